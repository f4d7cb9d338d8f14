package config

import (
	log "github.com/sirupsen/logrus"
	"regexp"
	"strings"
)

// behaviour enum
const (
	FilesBehaviourInclude = iota
	FilesBehaviourExclude
)

// applied policy enum
const (
	FilesPolicyInclude            = "explicit_include_policy"
	FilesPolicyIncludeByRegex     = "explicit_include_by_regex_policy"
	FilesPolicyExclude            = "explicit_exclude_policy"
	FilesPolicyExcludeByRegex     = "explicit_exclude_by_regex_policy"
	FilesPolicyConflicting        = "unallowed_definition_in_include_and_exclude_policy"
	FilesPolicyConflictingByRegex = "unallowed_definition_in_include_or_exclude_and_contradicting_regexp"
	FilesPolicyNoMatchFallback    = "not_matching_fallback_to_all_others"
)

// FilesConfiguration is the transformed outcome of a download's `files:` section
type FilesConfiguration struct {
	// plain file names can be identified through a lookup table
	include map[string]*SingleFileConfiguration
	// for regexps we cannot use a lookup table but have to execute each regex
	includeRegExps []*SingleFileConfiguration
	exclude        map[string]*SingleFileConfiguration
	excludeRegExps []*SingleFileConfiguration
	// fallback to that behaviour if a policy does not match or is conflicting
	behaviourForAllOthers int
}

type SingleFileConfiguration struct {
	// either the name of the file or the regular expression
	Name                string
	IsRegularExpression bool
	expr                *regexp.Regexp
}

// NewSingleFileConfiguration detects if fileNameOrRegExp is a regular expression ('/someregex/').
// An invalid regular expression is returned as error.
func NewSingleFileConfiguration(fileNameOrRegExp string) (*SingleFileConfiguration, error) {
	isRegEx := len(fileNameOrRegExp) > 1 && strings.HasPrefix(fileNameOrRegExp, "/") && strings.HasSuffix(fileNameOrRegExp, "/")

	r := &SingleFileConfiguration{
		Name:                fileNameOrRegExp,
		IsRegularExpression: isRegEx,
	}

	if isRegEx {
		r.Name = strings.TrimSuffix(strings.TrimPrefix(fileNameOrRegExp, "/"), "/")
		expr, err := regexp.Compile(r.Name)

		if err != nil {
			return nil, err
		}

		r.expr = expr
	}

	return r, nil
}

// ParseFilesSection reads `include`, `exclude` and `all_others`. Invalid entries are skipped with a warning.
func ParseFilesSection(cfg Raw) *FilesConfiguration {
	r := &FilesConfiguration{
		include:               make(map[string]*SingleFileConfiguration),
		exclude:               make(map[string]*SingleFileConfiguration),
		behaviourForAllOthers: FilesBehaviourInclude,
	}

	if cfg == nil {
		return r
	}

	r.includeRegExps = collectFileConfigurations(cfg.StringSlice("include"), r.include)
	r.excludeRegExps = collectFileConfigurations(cfg.StringSlice("exclude"), r.exclude)

	if strings.EqualFold(cfg.String("all_others"), "exclude") {
		r.behaviourForAllOthers = FilesBehaviourExclude
	}

	return r
}

func collectFileConfigurations(names []string, plain map[string]*SingleFileConfiguration) (regExps []*SingleFileConfiguration) {
	for _, name := range names {
		fileCfg, err := NewSingleFileConfiguration(name)

		if err != nil {
			log.Warnf("Ignoring invalid file pattern %#q: %s", name, err)
			continue
		}

		if fileCfg.IsRegularExpression {
			regExps = append(regExps, fileCfg)
		} else {
			plain[fileCfg.Name] = fileCfg
		}
	}

	return regExps
}

// IsFileIncluded returns true if the given file is defined as "included" through some policy
func (f *FilesConfiguration) IsFileIncluded(fileName string) bool {
	status, appliedPolicy := GetFileStatus(fileName, f)

	if status == FilesBehaviourExclude {
		log.Debugf("File %s is excluded (%s)", fileName, appliedPolicy)
		return false
	}

	return true
}

// IsEmpty is true if neither include nor exclude rules have been configured
func (f *FilesConfiguration) IsEmpty() bool {
	return len(f.include) == 0 && len(f.exclude) == 0 && len(f.includeRegExps) == 0 && len(f.excludeRegExps) == 0
}

func hasAtLeastOneMatch(fileName string, candidates []*SingleFileConfiguration) bool {
	for _, candidate := range candidates {
		if candidate.expr != nil && candidate.expr.MatchString(fileName) {
			return true
		}
	}

	return false
}

// GetFileStatus calculates the file's status based upon the defined policies
// @return (status, appliedPolicy)
func GetFileStatus(fileName string, f *FilesConfiguration) (int, string) {
	_, isExplicitlyIncluded := f.include[fileName]
	isIncludedByRegex := hasAtLeastOneMatch(fileName, f.includeRegExps)
	isIncluded := isExplicitlyIncluded || isIncludedByRegex

	_, isExplicitlyExcluded := f.exclude[fileName]
	isExcludedByRegex := hasAtLeastOneMatch(fileName, f.excludeRegExps)
	isExcluded := isExplicitlyExcluded || isExcludedByRegex

	if isExplicitlyIncluded && !isExcluded {
		return FilesBehaviourInclude, FilesPolicyInclude
	}

	if isIncludedByRegex && !isExcluded {
		return FilesBehaviourInclude, FilesPolicyIncludeByRegex
	}

	if isExplicitlyExcluded && !isIncluded {
		return FilesBehaviourExclude, FilesPolicyExclude
	}

	if isExcludedByRegex && !isIncluded {
		return FilesBehaviourExclude, FilesPolicyExcludeByRegex
	}

	if isExplicitlyIncluded && isExplicitlyExcluded {
		return f.behaviourForAllOthers, FilesPolicyConflicting
	}

	// file matched in both `include` and `exclude` sections
	if isIncluded && isExcluded {
		return f.behaviourForAllOthers, FilesPolicyConflictingByRegex
	}

	return f.behaviourForAllOthers, FilesPolicyNoMatchFallback
}
