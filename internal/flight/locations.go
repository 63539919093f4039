package flight

import "strings"

var locationNames = map[string]string{
	"BOGOTA":        "Bogotá",
	"MEDELLIN":      "Medellín",
	"CALI":          "Cali",
	"CARTAGENA":     "Cartagena",
	"BARRANQUILLA":  "Barranquilla",
	"BUCARAMANGA":   "Bucaramanga",
	"PEREIRA":       "Pereira",
	"SANTA_MARTA":   "Santa Marta",
	"MANIZALES":     "Manizales",
	"VILLAVICENCIO": "Villavicencio",
	"NEIVA":         "Neiva",
	"MONTERIA":      "Montería",
	"VALLEDUPAR":    "Valledupar",
	"CUCUTA":        "Cúcuta",
	"ARMENIA":       "Armenia",
	"IBAGUE":        "Ibagué",
	"PASTO":         "Pasto",
	"POPAYAN":       "Popayán",
	"SINCELEJO":     "Sincelejo",
	"QUIBDO":        "Quibdó",

	"MADRID":    "Madrid",
	"BARCELONA": "Barcelona",
	"PARIS":     "París",
	"LONDON":    "Londres",
	"ROME":      "Roma",
	"AMSTERDAM": "Ámsterdam",
	"FRANKFURT": "Frankfurt",
	"ZURICH":    "Zurich",
	"VIENNA":    "Viena",
	"LISBON":    "Lisboa",

	"NEW_YORK":       "Nueva York",
	"MIAMI":          "Miami",
	"LOS_ANGELES":    "Los Ángeles",
	"MEXICO_CITY":    "Ciudad de México",
	"LIMA":           "Lima",
	"QUITO":          "Quito",
	"CARACAS":        "Caracas",
	"PANAMA_CITY":    "Ciudad de Panamá",
	"SAN_JOSE":       "San José",
	"GUATEMALA_CITY": "Ciudad de Guatemala",
}

// LocationFor maps a stored location code to its display name, falling back
// to a prettified code ("SAN_ANDRES" -> "San andres").
func LocationFor(code string) Location {
	name, ok := locationNames[code]
	if !ok {
		name = formatCode(code)
	}
	return Location{Code: code, Name: name}
}

func formatCode(code string) string {
	if code == "" {
		return code
	}
	s := strings.ToLower(strings.ReplaceAll(code, "_", " "))
	return strings.ToUpper(s[:1]) + s[1:]
}

func locations(codes []string) []Location {
	out := make([]Location, 0, len(codes))
	for _, c := range codes {
		out = append(out, LocationFor(c))
	}
	return out
}
