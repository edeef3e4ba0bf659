package ecp

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
)

// Query paths served by the device
const (
	AppsPath       = "/query/apps"
	DeviceInfoPath = "/query/device-info"
)

// DeviceInfo is the subset of /query/device-info the tool displays
type DeviceInfo struct {
	XMLName         xml.Name `xml:"device-info" json:"-"`
	FriendlyName    string   `xml:"friendly-device-name" json:"friendly_device_name,omitempty"`
	ModelName       string   `xml:"model-name" json:"model_name,omitempty"`
	ModelNumber     string   `xml:"model-number" json:"model_number,omitempty"`
	SerialNumber    string   `xml:"serial-number" json:"serial_number,omitempty"`
	SoftwareVersion string   `xml:"software-version" json:"software_version,omitempty"`
	SoftwareBuild   string   `xml:"software-build" json:"software_build,omitempty"`
	WifiMAC         string   `xml:"wifi-mac" json:"wifi_mac,omitempty"`
	EthernetMAC     string   `xml:"ethernet-mac" json:"ethernet_mac,omitempty"`
	NetworkType     string   `xml:"network-type" json:"network_type,omitempty"`
}

// ParseDeviceInfo decodes a device-info document
func ParseDeviceInfo(data []byte) (*DeviceInfo, error) {
	var info DeviceInfo
	if err := xml.Unmarshal(data, &info); err != nil {
		return nil, NewParseError("failed to parse device-info XML", err)
	}
	return &info, nil
}

// DeviceInfo fetches and decodes /query/device-info from host
func (c *Client) DeviceInfo(ctx context.Context, host string) (*DeviceInfo, error) {
	body, err := c.Fetch(ctx, host, DeviceInfoPath)
	if err != nil {
		return nil, err
	}
	return ParseDeviceInfo(body)
}

// Fields returns the populated fields as name/value pairs, using the
// element names of the device-info document, in display order.
func (d *DeviceInfo) Fields() [][2]string {
	all := [][2]string{
		{"friendly-device-name", d.FriendlyName},
		{"model-name", d.ModelName},
		{"model-number", d.ModelNumber},
		{"serial-number", d.SerialNumber},
		{"software-version", d.SoftwareVersion},
		{"software-build", d.SoftwareBuild},
		{"wifi-mac", d.WifiMAC},
		{"ethernet-mac", d.EthernetMAC},
		{"network-type", d.NetworkType},
	}

	fields := make([][2]string, 0, len(all))
	for _, f := range all {
		if strings.TrimSpace(f[1]) != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// String returns a one-line summary suitable for a status line
func (d *DeviceInfo) String() string {
	name := d.FriendlyName
	if name == "" {
		name = d.ModelName
	}
	if d.SoftwareVersion == "" {
		return name
	}
	return fmt.Sprintf("%s (%s, OS %s)", name, d.ModelNumber, d.SoftwareVersion)
}
