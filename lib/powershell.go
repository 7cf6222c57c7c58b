package lib

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf16"
)

// PowerShellArg is a named parameter of a PowerShell function call.
// Value must be a string, a bool (rendered as a switch) or a map[string]string (rendered as a hashtable).
type PowerShellArg struct {
	Name   string
	Value  any
	Secret bool
}

// PowerShellCall imports a module and calls one of its functions
type PowerShellCall struct {
	Module   string
	Function string
	Args     []PowerShellArg
}

const redactedValue = "'***'"

func (p PowerShellCall) Script() string {
	return p.render(false)
}

// RedactedScript is safe to log: secret arguments are masked
func (p PowerShellCall) RedactedScript() string {
	return p.render(true)
}

// EncodedScript is the script in the format expected by pwsh -EncodedCommand
func (p PowerShellCall) EncodedScript() string {
	return EncodePowerShellCommand(p.Script())
}

func (p PowerShellCall) render(redact bool) string {
	builder := strings.Builder{}
	builder.WriteString("$ErrorActionPreference = 'Stop'; ")
	builder.WriteString(fmt.Sprintf("Import-Module %s; ", QuotePowerShell(p.Module)))
	builder.WriteString(p.Function)

	for _, arg := range p.Args {
		switch value := arg.Value.(type) {
		case bool:
			if value {
				builder.WriteString(" -" + arg.Name)
			}
		case string:
			quoted := QuotePowerShell(value)
			if redact && arg.Secret {
				quoted = redactedValue
			}
			builder.WriteString(fmt.Sprintf(" -%s %s", arg.Name, quoted))
		case map[string]string:
			builder.WriteString(fmt.Sprintf(" -%s %s", arg.Name, powerShellHashtable(value)))
		default:
			panic(fmt.Sprintf("unsupported PowerShell argument type %T for %s", arg.Value, arg.Name))
		}
	}

	return builder.String()
}

// PowerShell treats the typographic single quotes as quote characters too
var powerShellQuoteReplacer = strings.NewReplacer(
	"'", "''",
	"‘", "‘‘",
	"’", "’’",
	"‚", "‚‚",
	"‛", "‛‛",
)

// QuotePowerShell returns value as a verbatim (single-quoted) PowerShell string
func QuotePowerShell(value string) string {
	return "'" + powerShellQuoteReplacer.Replace(value) + "'"
}

func powerShellHashtable(values map[string]string) string {
	keys := slices.Sorted(maps.Keys(values))

	entries := make([]string, len(keys))
	for i, key := range keys {
		entries[i] = fmt.Sprintf("%s = %s", QuotePowerShell(key), QuotePowerShell(values[key]))
	}

	return "@{" + strings.Join(entries, "; ") + "}"
}

// EncodePowerShellCommand encodes the script as base64 UTF-16LE
func EncodePowerShellCommand(script string) string {
	codeUnits := utf16.Encode([]rune(script))
	buf := make([]byte, len(codeUnits)*2)
	for i, unit := range codeUnits {
		binary.LittleEndian.PutUint16(buf[i*2:], unit)
	}
	return base64.StdEncoding.EncodeToString(buf)
}
