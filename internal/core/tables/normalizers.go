package tables

import (
	"context"
	"strings"

	"github.com/JonMunkholm/TableUI/internal/core"
)

// UFs maps Brazilian state names (lowercase) to their abbreviations.
var UFs = map[string]string{
	"acre":                "AC",
	"alagoas":             "AL",
	"amapá":               "AP",
	"amazonas":            "AM",
	"bahia":               "BA",
	"ceará":               "CE",
	"distrito federal":    "DF",
	"espírito santo":      "ES",
	"goiás":               "GO",
	"maranhão":            "MA",
	"mato grosso":         "MT",
	"mato grosso do sul":  "MS",
	"minas gerais":        "MG",
	"pará":                "PA",
	"paraíba":             "PB",
	"paraná":              "PR",
	"pernambuco":          "PE",
	"piauí":               "PI",
	"rio de janeiro":      "RJ",
	"rio grande do norte": "RN",
	"rio grande do sul":   "RS",
	"rondônia":            "RO",
	"roraima":             "RR",
	"santa catarina":      "SC",
	"são paulo":           "SP",
	"sergipe":             "SE",
	"tocantins":           "TO",
}

// NormalizeUF converts Brazilian state names to their 2-letter abbreviations.
// If the input is already an abbreviation or not recognized, returns as-is.
func NormalizeUF(s string) string {
	s = strings.TrimSpace(s)

	if code, ok := UFs[strings.ToLower(s)]; ok {
		return code
	}

	upper := strings.ToUpper(s)
	for _, code := range UFs {
		if upper == code {
			return code
		}
	}

	return s
}

// withNormalizers applies per-column normalizers to every loaded row.
func withNormalizers(load core.LoadFunc, normalizers map[int]func(string) string) core.LoadFunc {
	return func(ctx context.Context, db core.DBTX) ([][]string, error) {
		rows, err := load(ctx, db)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			for col, fn := range normalizers {
				if col < len(row) {
					row[col] = fn(row[col])
				}
			}
		}
		return rows, nil
	}
}
