package tables

import (
	"regexp"
	"sort"

	"github.com/JonMunkholm/TableUI/internal/forms"
)

func init() {
	forms.Register(forms.Form{
		ID: "contato",
		Fields: []forms.Field{
			{Name: "nome", Label: "Nome", Required: true, MinLen: 2, MaxLen: 80},
			{Name: "email", Label: "E-mail", Type: forms.FieldEmail, Required: true},
			{Name: "telefone", Label: "Telefone", Pattern: regexp.MustCompile(`^\(?\d{2}\)?\s?\d{4,5}-?\d{4}$`), PatternMsg: "informe um telefone com DDD"},
			{Name: "uf", Label: "UF", Type: forms.FieldEnum, EnumValues: ufCodes()},
			{Name: "nascimento", Label: "Nascimento", Type: forms.FieldDate},
			{Name: "mensagem", Label: "Mensagem", Required: true, MaxLen: 1000},
		},
	})
}

func ufCodes() []string {
	codes := make([]string, 0, len(UFs))
	for _, code := range UFs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
