package tester

import (
	"fmt"

	"github.com/dreitier/testermon/scpi"
)

// BaseInfo identifies the tester's hardware and software
type BaseInfo struct {
	SerialNumber    string   `json:"serial_number"`
	FirmwareVersion string   `json:"firmware_version"`
	OSVersion       string   `json:"os_version"`
	BIOSVersion     string   `json:"bios_version"`
	PartNumber      string   `json:"part_number"`
	ProductName     string   `json:"product_name"`
	HardwareVersion string   `json:"hardware_version"`
	CalibrationDate string   `json:"calibration_date"`
	ConfigVersion   string   `json:"config_version"`
	DriverVersion   string   `json:"driver_version"`
	MAC             string   `json:"mac"`
	Storage         *Catalog `json:"storage"`
}

// fieldRef addresses a field of a list reply; the first cut bytes are a key prefix like "BV:"
type fieldRef struct {
	label string
	index int
	cut   int
}

// CheckBaseInfo collects and logs the identification of the tester and its
// storage usage. The file listing is logged if the remaining space is below
// the listing threshold.
func (s *Session) CheckBaseInfo() (*BaseInfo, error) {
	if !s.connected {
		s.transcript.Infof("No tester connect")
		return nil, scpi.ErrNotConnected
	}

	idn, err := s.QueryList("SYS;*IDN?", ",")
	if err != nil {
		return nil, err
	}
	sysMidn, err := s.QueryList("SYS;MIDN?", ",")
	if err != nil {
		return nil, err
	}
	bpMidn, err := s.QueryList("BP;MIDN?", ",")
	if err != nil {
		return nil, err
	}
	mac, err := s.QueryList("SYS;SOCK:MAC?", ",")
	if err != nil {
		return nil, err
	}

	info := &BaseInfo{}
	fields := []struct {
		reply  []string
		ref    fieldRef
		target *string
	}{
		{idn, fieldRef{"SN", 2, 0}, &info.SerialNumber},
		{idn, fieldRef{"Firmware Ver", 3, 0}, &info.FirmwareVersion},
		{sysMidn, fieldRef{"OS Ver", 4, 4}, &info.OSVersion},
		{sysMidn, fieldRef{"BIOS Ver", 7, 3}, &info.BIOSVersion},
		{sysMidn, fieldRef{"PN", 8, 3}, &info.PartNumber},
		{bpMidn, fieldRef{"Product Name", 4, 4}, &info.ProductName},
		{bpMidn, fieldRef{"Hardware Ver", 5, 6}, &info.HardwareVersion},
		{bpMidn, fieldRef{"Cal. Date", 6, 3}, &info.CalibrationDate},
		{bpMidn, fieldRef{"Configure Ver", 7, 3}, &info.ConfigVersion},
		{bpMidn, fieldRef{"Driver Ver", 11, 3}, &info.DriverVersion},
	}

	for _, f := range fields {
		value, err := extract(f.reply, f.ref)
		if err != nil {
			return nil, err
		}
		*f.target = value
	}

	if len(mac) == 0 || len(mac[0]) < 2 {
		return nil, fmt.Errorf("MAC reply %q is too short", mac)
	}
	// strip the enclosing quotes
	info.MAC = mac[0][1 : len(mac[0])-1]

	s.logBaseInfo(info)

	catalog, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	info.Storage = catalog

	s.transcript.Infof("Space used %.3fMB, left %.3fMB", catalog.UsedMB(), catalog.FreeMB())

	if catalog.FreeBytes < float64(s.listingThreshold) {
		for _, line := range catalog.Listing() {
			s.transcript.Infof("%s", line)
		}
	}

	return info, nil
}

func (s *Session) logBaseInfo(info *BaseInfo) {
	lines := []struct {
		label string
		value string
	}{
		{"SN:", info.SerialNumber},
		{"Firmware Ver:", info.FirmwareVersion},
		{"OS Ver:", info.OSVersion},
		{"BIOS Ver:", info.BIOSVersion},
		{"PN:", info.PartNumber},
		{"Product Name:", info.ProductName},
		{"Hardware Ver:", info.HardwareVersion},
		{"Cal. Date:", info.CalibrationDate},
		{"Configure Ver:", info.ConfigVersion},
		{"Driver Ver:", info.DriverVersion},
		{"MAC:", info.MAC},
	}

	for _, line := range lines {
		s.transcript.Infof("%-17s%s", line.label, line.value)
	}
}

func extract(reply []string, ref fieldRef) (string, error) {
	if ref.index >= len(reply) {
		return "", fmt.Errorf("%s: reply has %d fields, expected at least %d", ref.label, len(reply), ref.index+1)
	}

	value := reply[ref.index]
	if ref.cut >= len(value) {
		return "", nil
	}

	return value[ref.cut:], nil
}
