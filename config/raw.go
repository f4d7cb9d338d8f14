package config

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"gopkg.in/yaml.v3"
)

const (
	Day  = 24 * time.Hour
	Year = 365 * Day
)

var (
	durationUnits = map[string]time.Duration{
		"w": 7 * Day,
		"d": Day,
		"h": time.Hour,
		"m": time.Minute,
		"s": time.Second,
	}
	// one component of the short notation, e.g. "1d" in "1d 12h"
	durationTokenExpr = regexp.MustCompile(`^([0-9]+)([wWdDhms])$`)
	interpolationExpr = regexp.MustCompile(`__\${(\w+)}__`)
)

// Raw is the untyped YAML tree of a configuration file. Scalars are read through
// the typed accessors, which interpolate __${ENV}__ placeholders.
type Raw map[string]interface{}

func ParseFromString(content string) (Raw, error) {
	return Parse(strings.NewReader(content))
}

// Parse decodes a single YAML document; an empty document yields an empty Raw
func Parse(reader io.Reader) (Raw, error) {
	out := Raw{}

	err := yaml.NewDecoder(reader).Decode(&out)
	if err == io.EOF {
		return Raw{}, nil
	}

	return out, err
}

func (c Raw) Sub(key string) Raw {
	return asRaw(c[key])
}

// SubList returns every map element of a YAML sequence, skipping scalars
func (c Raw) SubList(key string) []Raw {
	elems, _ := c[key].([]interface{})

	var list []Raw
	for _, elem := range elems {
		if sub := asRaw(elem); sub != nil {
			list = append(list, sub)
		}
	}

	return list
}

func (c Raw) Has(key string) bool {
	_, exists := c[key]
	return exists
}

func (c Raw) String(key string) string {
	return c.scalar(key)
}

// StringSlice reads a sequence of strings; a single scalar counts as one element
func (c Raw) StringSlice(key string) []string {
	elems, isList := c[key].([]interface{})
	if !isList {
		if s := c.scalar(key); s != "" {
			return []string{s}
		}
		return nil
	}

	slice := make([]string, 0, len(elems))
	for _, elem := range elems {
		if s := interpolate(asString(elem)); s != "" {
			slice = append(slice, s)
		}
	}

	return slice
}

func (c Raw) Bool(key string) bool {
	if b, ok := c[key].(bool); ok {
		return b
	}

	b, _ := strconv.ParseBool(c.scalar(key))
	return b
}

func (c Raw) Int64(key string) int64 {
	switch v := c[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	}

	i, _ := strconv.ParseInt(c.scalar(key), 10, 64)
	return i
}

// Bytes understands plain numbers as well as "512K", "1 G" or "1.5GB"
func (c Raw) Bytes(key string) uint64 {
	s := strings.ToUpper(strings.ReplaceAll(c.scalar(key), " ", ""))
	if s == "" {
		return 0
	}

	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n
	}

	n, err := bytefmt.ToBytes(s)
	if err != nil {
		return 0
	}

	return n
}

// Duration accepts Go durations ("500ms"), the short notation ("1d 2h") and
// plain numbers, which are interpreted as seconds. Anything else is 0.
func (c Raw) Duration(key string) time.Duration {
	s := c.scalar(key)
	if s == "" {
		return 0
	}

	if seconds, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d
	}

	var total time.Duration
	for _, token := range strings.Fields(s) {
		m := durationTokenExpr.FindStringSubmatch(token)
		if m == nil {
			return 0
		}

		n, _ := strconv.ParseInt(m[1], 10, 64)
		total += time.Duration(n) * durationUnits[strings.ToLower(m[2])]
	}

	return total
}

// scalar renders the value at key as trimmed and interpolated string
func (c Raw) scalar(key string) string {
	return strings.TrimSpace(interpolate(asString(c[key])))
}

func asRaw(val interface{}) Raw {
	switch v := val.(type) {
	case Raw:
		return v
	case map[string]interface{}:
		return v
	case map[interface{}]interface{}:
		sub := Raw{}
		for key, elem := range v {
			if s, ok := key.(string); ok {
				sub[s] = elem
			}
		}
		return sub
	}

	return nil
}

func asString(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}

	return fmt.Sprint(val)
}

// interpolate replaces every __${NAME}__ placeholder with the environment variable NAME
func interpolate(s string) string {
	return interpolationExpr.ReplaceAllStringFunc(s, func(placeholder string) string {
		return os.Getenv(strings.TrimSuffix(strings.TrimPrefix(placeholder, "__${"), "}__"))
	})
}
