package services

// ServerInfo is the server block of the settings page.
type ServerInfo struct {
	Hostname  string `json:"hostname"`
	OS        string `json:"os"`
	LVEStatus string `json:"lve_status"`
}

type SecurityInfo struct {
	SELinux     string `json:"selinux"`
	Firewall    string `json:"firewall"`
	AutoUpdates string `json:"auto_updates"`
}

// ResourceUsage values are percentages.
type ResourceUsage struct {
	CPU              int `json:"cpu"`
	Memory           int `json:"memory"`
	DiskIO           int `json:"disk_io"`
	InboundBandwidth int `json:"inbound_bandwidth"`
}

type Settings struct {
	Server    ServerInfo    `json:"server"`
	Security  SecurityInfo  `json:"security"`
	Resources ResourceUsage `json:"resources"`
}

// StaticSettings returns the fixed settings figures. Nothing here is read
// from the server.
func StaticSettings() Settings {
	return Settings{
		Server: ServerInfo{
			Hostname:  "cloudlinux.server.local",
			OS:        "CloudLinux 9",
			LVEStatus: "Активна",
		},
		Security: SecurityInfo{
			SELinux:     "Enabled",
			Firewall:    "Активний",
			AutoUpdates: "Увімкнено",
		},
		Resources: ResourceUsage{
			CPU:              50,
			Memory:           65,
			DiskIO:           30,
			InboundBandwidth: 15,
		},
	}
}
