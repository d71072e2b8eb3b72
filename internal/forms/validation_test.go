package forms

import (
	"errors"
	"regexp"
	"testing"
)

func contactForm() Form {
	return Form{
		ID: "contato",
		Fields: []Field{
			{Name: "nome", Label: "Nome", Required: true, MinLen: 2, MaxLen: 10},
			{Name: "email", Label: "E-mail", Type: FieldEmail, Required: true},
			{Name: "idade", Label: "Idade", Type: FieldNumber},
			{Name: "nascimento", Label: "Nascimento", Type: FieldDate},
			{Name: "uf", Label: "UF", Type: FieldEnum, EnumValues: []string{"SP", "RJ"}},
			{Name: "cep", Label: "CEP", Pattern: regexp.MustCompile(`^\d{5}-?\d{3}$`), PatternMsg: "CEP inválido"},
		},
	}
}

func TestValidateField(t *testing.T) {
	f := contactForm()
	field := func(name string) Field {
		fl, ok := f.Field(name)
		if !ok {
			t.Fatalf("field %q not found", name)
		}
		return fl
	}

	tests := []struct {
		name    string
		field   string
		value   string
		wantMsg string
	}{
		{"required blank", "nome", "  ", "Nome é obrigatório"},
		{"too short", "nome", "A", "Nome deve ter pelo menos 2 caracteres"},
		{"too long", "nome", "Maria Aparecida", "Nome deve ter no máximo 10 caracteres"},
		{"accented length counts runes", "nome", "João", ""},
		{"bad email", "email", "maria@", "informe um e-mail válido"},
		{"good email", "email", "maria@exemplo.com.br", ""},
		{"display-name email rejected", "email", "Maria <maria@exemplo.com>", "informe um e-mail válido"},
		{"bad number", "idade", "dez", "Idade deve ser um número"},
		{"brazilian number", "idade", "1.234,5", ""},
		{"bad date", "nascimento", "31/02/2000", "Nascimento deve ser uma data (DD/MM/AAAA)"},
		{"br date", "nascimento", "15/03/1990", ""},
		{"iso date", "nascimento", "1990-03-15", ""},
		{"enum case-insensitive", "uf", "sp", ""},
		{"enum rejected", "uf", "MG", "UF deve ser um de: SP, RJ"},
		{"optional blank", "idade", "", ""},
		{"pattern message", "cep", "123", "CEP inválido"},
		{"pattern ok", "cep", "01310-100", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateField(field(tt.field), tt.value)
			got := ""
			if err != nil {
				got = err.Error()
			}
			if got != tt.wantMsg {
				t.Errorf("ValidateField(%q) = %q, want %q", tt.value, got, tt.wantMsg)
			}
		})
	}
}

func TestForm_Validate(t *testing.T) {
	res := contactForm().Validate(map[string]string{
		"nome":  "Ana",
		"email": "invalido",
		"extra": "ignored",
	})

	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("errors = %+v, want only email", res.Errors)
	}
	if got := res.Message("email"); got != "informe um e-mail válido" {
		t.Errorf("Message(email) = %q", got)
	}
	if got := res.Message("nome"); got != "" {
		t.Errorf("Message(nome) = %q, want empty", got)
	}
}

func TestRegistry(t *testing.T) {
	Clear()
	defer Clear()

	Register(contactForm())
	if _, ok := Get("contato"); !ok {
		t.Fatal("registered form not found")
	}
	if _, err := Lookup("pedido"); !errors.Is(err, ErrFormNotFound) {
		t.Errorf("Lookup(pedido) err = %v, want ErrFormNotFound", err)
	}
	if ids := IDs(); len(ids) != 1 || ids[0] != "contato" {
		t.Errorf("IDs = %v", ids)
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()
	Register(contactForm())
}
