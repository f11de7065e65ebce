package config

import "strings"

// Stand names.
const (
	StandExt  = "ext"
	StandIFT  = "ift"
	StandUAT  = "uat"
	StandProd = "prod"
)

// Stand is a preset model endpoint.
type Stand struct {
	Name string
	Host string
	// MutualTLS stands authenticate with client certificates from
	// <cert_dir>/<name>/{ca,cert,key}.pem.
	MutualTLS          bool
	InsecureSkipVerify bool
}

var stands = map[string]Stand{
	StandExt: {
		Name:               StandExt,
		Host:               "https://gigachat.devices.sberbank.ru/api/v1",
		InsecureSkipVerify: true,
	},
	StandIFT: {
		Name:      StandIFT,
		Host:      "https://gigachat-ift.sberdevices.delta.sbrf.ru/v1",
		MutualTLS: true,
	},
	StandUAT: {
		Name:      StandUAT,
		Host:      "https://gigachat-psi.sberdevices.ca.sbrf.ru/v1",
		MutualTLS: true,
	},
	StandProd: {
		Name:      StandProd,
		Host:      "https://gigachat-prom.sberdevices.ca.sbrf.ru/v1",
		MutualTLS: true,
	},
}

// LookupStand returns the preset for a stand name. "psi" is an alias of uat;
// unknown names resolve to prod.
func LookupStand(name string) Stand {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "psi" {
		name = StandUAT
	}
	if s, ok := stands[name]; ok {
		return s
	}
	return stands[StandProd]
}
