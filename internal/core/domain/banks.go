package domain

import "strings"

// Bank is an entity the client can receive the disbursement in
type Bank struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Banks is the selectable catalogue, in display order
var Banks = []Bank{
	{"bancolombia", "Bancolombia"},
	{"banco-bogota", "Banco de Bogotá"},
	{"davivienda", "Davivienda"},
	{"bbva", "BBVA Colombia"},
	{"av-villas", "Banco AV Villas"},
	{"banco-popular", "Banco Popular"},
	{"colpatria", "Banco Colpatria"},
	{"banco-caja-social", "Banco Caja Social"},
	{"itau", "Banco Itaú"},
	{"scotiabank-colpatria", "Scotiabank Colpatria"},
	{"citibank", "Citibank Colombia"},
	{"gnb-sudameris", "GNB Sudameris"},
	{"bancoomeva", "Bancoomeva"},
	{"banco-pichincha", "Banco Pichincha"},
	{"banco-agrario", "Banco Agrario de Colombia"},
	{"banco-cooperativo", "Banco Cooperativo"},
	{"bancamia", "Bancamía"},
	{"banco-occidente", "Banco de Occidente"},
	{"banco-falabella", "Banco Falabella"},
}

// BankLabel returns the display name of a bank key, "Desconocido" if unknown
func BankLabel(value string) string {
	for _, b := range Banks {
		if b.Value == value {
			return b.Label
		}
	}
	return "Desconocido"
}

// SearchBanks filters the catalogue by a case-insensitive label fragment
func SearchBanks(term string) []Bank {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return Banks
	}

	out := []Bank{}
	for _, b := range Banks {
		if strings.Contains(strings.ToLower(b.Label), term) {
			out = append(out, b)
		}
	}
	return out
}
