// Package core provides the table-session service.
//
// # Error Codes Reference
//
// This file defines user-facing error messages with codes for support
// reference. Messages are shown in the page's toast area; the code lets
// support staff find the technical error in the logs.
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Table not found: The requested table does not exist
//	         Patterns: "table not found", "unknown table"
//
//	TBL002 - Column not sortable: The column has no sort marker
//	         Patterns: "column not sortable"
//
//	TBL003 - Column out of range: The column index does not exist
//	         Patterns: "column out of range"
//
//	TBL004 - Table failed to load: The loader returned an error
//	         Patterns: "load table" (checked after database and request
//	         errors so the underlying cause wins)
//
//	TBL005 - Server busy: Every load slot stayed taken for the whole wait
//	         Patterns: "too many concurrent table loads"
//
// # Row and Bulk Errors (ROW001, BULK001-BULK002)
//
//	ROW001  - Row out of range: The row does not exist
//	          Patterns: "row out of range"
//
//	BULK001 - Unknown action: The bulk action is not registered
//	          Patterns: "unknown bulk action"
//
//	BULK002 - Nothing selected: The bulk action needs a selection
//	          Patterns: "no rows selected"
//
// # Session Errors (SES001)
//
//	SES001 - Session expired: The table session was evicted or never existed
//	         Patterns: "session not found"
//
// # Form Errors (FORM001-FORM003)
//
//	FORM001 - Form not found. Patterns: "form not found"
//	FORM002 - Invalid form id. Patterns: "invalid form id"
//	FORM003 - Draft not found. Patterns: "draft not found"
//
// # Database Errors (DB004-DB008)
//
//	DB004 - Connection refused. Patterns: "connection refused"
//	DB005 - Connection reset. Patterns: "connection reset"
//	DB006 - Timeout. Patterns: "timeout"
//	DB008 - No database configured. Patterns: "no database configured"
//
// # Request Errors (REQ001-REQ002), Rate Limiting (RATE001)
//
//	REQ001  - Request cancelled. Patterns: "context canceled"
//	REQ002  - Request timed out. Patterns: "context deadline exceeded"
//	RATE001 - Rate limited. Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the application logs for the
// original technical error.
//
// # Pattern Matching
//
// Patterns are matched case-insensitively using strings.Contains. The first
// matching pattern wins, so more specific patterns come first.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Table Errors (TBL001-TBL004)
	// =========================================================================
	{
		pattern: "table not found",
		msg: UserMessage{
			Message: "Tabela não encontrada",
			Action:  "Verifique o endereço da página",
			Code:    "TBL001",
		},
	},
	{
		pattern: "unknown table",
		msg: UserMessage{
			Message: "Tabela não encontrada",
			Action:  "Verifique o endereço da página",
			Code:    "TBL001",
		},
	},
	{
		pattern: "column not sortable",
		msg: UserMessage{
			Message: "Esta coluna não pode ser ordenada",
			Action:  "Escolha uma coluna com indicador de ordenação",
			Code:    "TBL002",
		},
	},
	{
		pattern: "column out of range",
		msg: UserMessage{
			Message: "Coluna inexistente",
			Action:  "Recarregue a página",
			Code:    "TBL003",
		},
	},

	// =========================================================================
	// Row and Bulk Errors (ROW001, BULK001-BULK002)
	// =========================================================================
	{
		pattern: "row out of range",
		msg: UserMessage{
			Message: "Linha inexistente",
			Action:  "Recarregue a página",
			Code:    "ROW001",
		},
	},
	{
		pattern: "unknown bulk action",
		msg: UserMessage{
			Message: "Ação não disponível",
			Action:  "Escolha uma ação do painel",
			Code:    "BULK001",
		},
	},
	{
		pattern: "no rows selected",
		msg: UserMessage{
			Message: "Nenhuma linha selecionada",
			Action:  "Selecione ao menos uma linha",
			Code:    "BULK002",
		},
	},

	// =========================================================================
	// Session Errors (SES001)
	// =========================================================================
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Sua sessão da tabela expirou",
			Action:  "Recarregue a página para continuar",
			Code:    "SES001",
		},
	},

	// =========================================================================
	// Form Errors (FORM001-FORM003)
	// =========================================================================
	{
		pattern: "form not found",
		msg: UserMessage{
			Message: "Formulário não encontrado",
			Action:  "Verifique o endereço da página",
			Code:    "FORM001",
		},
	},
	{
		pattern: "invalid form id",
		msg: UserMessage{
			Message: "Identificador de formulário inválido",
			Action:  "Recarregue a página",
			Code:    "FORM002",
		},
	},
	{
		pattern: "draft not found",
		msg: UserMessage{
			Message: "Nenhum rascunho salvo",
			Action:  "Preencha o formulário normalmente",
			Code:    "FORM003",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ002)
	// Checked before the generic "timeout" pattern.
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "A requisição foi cancelada",
			Action:  "Tente novamente",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "A requisição demorou demais",
			Action:  "Tente novamente em alguns instantes",
			Code:    "REQ002",
		},
	},

	// =========================================================================
	// Database Errors (DB004-DB008)
	// =========================================================================
	{
		pattern: "no database configured",
		msg: UserMessage{
			Message: "Banco de dados não configurado",
			Action:  "Configure DATABASE_URL para usar esta tabela",
			Code:    "DB008",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Não foi possível conectar ao banco de dados",
			Action:  "Tente novamente em alguns instantes",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "A conexão com o banco de dados foi interrompida",
			Action:  "Tente novamente",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "A operação excedeu o tempo limite",
			Action:  "Tente novamente em alguns instantes",
			Code:    "DB006",
		},
	},

	// Generic load failure, after the specific causes above.
	{
		pattern: "too many concurrent table loads",
		msg: UserMessage{
			Message: "O servidor está ocupado carregando outras tabelas",
			Action:  "Aguarde alguns segundos e tente novamente",
			Code:    "TBL005",
		},
	},
	{
		pattern: "load table",
		msg: UserMessage{
			Message: "Não foi possível carregar a tabela",
			Action:  "Tente novamente em alguns instantes",
			Code:    "TBL004",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Muitas requisições",
			Action:  "Aguarde um momento antes de tentar novamente",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Ocorreu um erro inesperado",
	Action:  "Tente novamente ou contate o suporte",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Código: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Código: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern, as opposed to
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with its user-friendly message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
