// Package lsp serves gomacro diagnostics and completion over the Language
// Server Protocol.
package lsp

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/itsmostafa/gomacro/internal/lexer"
	"github.com/itsmostafa/gomacro/internal/parser"
	"github.com/itsmostafa/gomacro/internal/token"
)

const lspName = "gomacro-lsp"

var log = commonlog.GetLogger("gomacro.lsp")

// Server answers editor requests for gomacro documents.
type Server struct {
	commands []string
	version  string
	lexOpts  []lexer.Option

	mu   sync.Mutex
	docs map[string]string // URI -> full document content

	handler protocol.Handler
	server  *glspserver.Server
}

// New creates a server that completes the given command names. opts are
// applied when lexing documents for diagnostics.
func New(commands []string, version string, opts ...lexer.Option) *Server {
	s := &Server{
		commands: append([]string(nil), commands...),
		version:  version,
		lexOpts:  opts,
		docs:     make(map[string]string),
	}
	sort.Strings(s.commands)

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)
	return s
}

// RunStdio serves on stdin and stdout until the client disconnects.
func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	openClose := true
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &openClose,
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	if len(params.ContentChanges) == 0 {
		return nil
	}

	// With full sync the last change holds the whole document.
	last := params.ContentChanges[len(params.ContentChanges)-1]
	whole, ok := last.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}

	s.mu.Lock()
	s.docs[string(uri)] = whole.Text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, whole.Text)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	s.mu.Lock()
	text, ok := s.docs[string(params.TextDocument.URI)]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return s.Complete(extractPrefix(text, params.Position)), nil
}

func (s *Server) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := Diagnose(text, s.lexOpts...)
	log.Debugf("%s: %d diagnostics", uri, len(diagnostics))
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// Diagnose lexes and parses text and reports the first error, if any.
// The result is never nil so clients clear stale diagnostics.
func Diagnose(text string, opts ...lexer.Option) []protocol.Diagnostic {
	_, err := parser.ParseSource(text, opts...)
	if err == nil {
		return []protocol.Diagnostic{}
	}

	var (
		pos   token.Position
		width = 1
		msg   = err.Error()
	)
	var le *lexer.Error
	var se *parser.SyntaxError
	switch {
	case errors.As(err, &le):
		pos, msg = le.Pos, le.Msg
	case errors.As(err, &se):
		pos = se.Pos
		msg = strings.TrimPrefix(se.Error(), se.Pos.String()+": ")
		if n := utf8.RuneCountInString(se.Got.Literal); n > 0 && se.Got.Literal != "\n" {
			width = n
		}
	}

	lines := strings.Split(text, "\n")
	start := toProtocol(lines, pos)
	end := toProtocol(lines, token.Position{Line: pos.Line, Column: pos.Column + width})
	severity := protocol.DiagnosticSeverityError
	source := "gomacro"
	return []protocol.Diagnostic{{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Source:   &source,
		Message:  msg,
	}}
}

// Complete returns the keywords and command names starting with prefix.
func (s *Server) Complete(prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem

	keywordKind := protocol.CompletionItemKindKeyword
	for _, kw := range keywords() {
		if strings.HasPrefix(kw, prefix) {
			items = append(items, protocol.CompletionItem{Label: kw, Kind: &keywordKind})
		}
	}

	functionKind := protocol.CompletionItemKindFunction
	for _, name := range s.commands {
		if strings.HasPrefix(name, prefix) {
			detail := "command"
			items = append(items, protocol.CompletionItem{Label: name, Kind: &functionKind, Detail: &detail})
		}
	}
	return items
}

func keywords() []string {
	kws := make([]string, 0, len(token.Keywords))
	for kw := range token.Keywords {
		kws = append(kws, kw)
	}
	sort.Strings(kws)
	return kws
}

// toProtocol converts a 1-based line and rune column to a 0-based LSP
// position. LSP counts characters in UTF-16 code units; columns past the
// end of the line count one unit each.
func toProtocol(lines []string, p token.Position) protocol.Position {
	line, col := max(p.Line-1, 0), max(p.Column-1, 0)
	units := col
	if line < len(lines) {
		runes := []rune(lines[line])
		n := min(col, len(runes))
		units = utf16Len(runes[:n]) + col - n
	}
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(units)}
}

func utf16Len(runes []rune) int {
	n := 0
	for _, r := range runes {
		n += utf16.RuneLen(r)
	}
	return n
}

// runeIndex maps a UTF-16 offset into runes back to a rune index.
func runeIndex(runes []rune, units int) int {
	for i, r := range runes {
		if units <= 0 {
			return i
		}
		units -= utf16.RuneLen(r)
	}
	return len(runes)
}

// extractPrefix returns the identifier characters immediately before the
// cursor.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := []rune(lines[pos.Line])
	col := runeIndex(line, int(pos.Character))

	start := col
	for start > 0 {
		ch := line[start-1]
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			start--
		} else {
			break
		}
	}
	return string(line[start:col])
}
