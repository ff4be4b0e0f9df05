package middleware

import (
	"bytes"
	"encoding/json"
	"html"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

var (
	nullBytePattern     = regexp.MustCompile(`\x00`)
	scriptTagPattern    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	danglingScriptOpen  = regexp.MustCompile(`(?i)<script[^>]*>`)
	eventHandlerPattern = regexp.MustCompile(`(?i)\son\w+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	scriptSchemePattern = regexp.MustCompile(`(?i)(javascript|vbscript)\s*:`)
)

// defaultRichTextFields skip entity-escaping but still have dangerous
// constructs stripped. Everything else is fully escaped.
var defaultRichTextFields = []string{"body", "content", "description", "reason", "review_note", "message"}

// Sanitizer recursively cleans every string leaf of mutating request bodies.
// It is defense-in-depth: a body that cannot be parsed passes through
// unmodified rather than failing the request.
type Sanitizer struct {
	richText map[string]struct{}
	ugc      *bluemonday.Policy
	logger   zerolog.Logger
}

// NewSanitizer builds a sanitizer; richTextFields overrides the default
// allow-list when non-empty.
func NewSanitizer(richTextFields []string, logger zerolog.Logger) *Sanitizer {
	if len(richTextFields) == 0 {
		richTextFields = defaultRichTextFields
	}

	allowed := make(map[string]struct{}, len(richTextFields))
	for _, field := range richTextFields {
		allowed[strings.ToLower(field)] = struct{}{}
	}

	return &Sanitizer{
		richText: allowed,
		ugc:      bluemonday.UGCPolicy(),
		logger:   logger.With().Str("component", "sanitizer").Logger(),
	}
}

// Handler returns the fiber middleware.
func (s *Sanitizer) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		default:
			return c.Next()
		}

		contentType := strings.ToLower(c.Get(fiber.HeaderContentType))
		switch {
		case strings.Contains(contentType, fiber.MIMEApplicationJSON):
			s.sanitizeJSONBody(c)
		case strings.Contains(contentType, fiber.MIMEApplicationForm):
			s.sanitizeFormBody(c)
		}

		return c.Next()
	}
}

func (s *Sanitizer) sanitizeJSONBody(c *fiber.Ctx) {
	body := c.Body()
	if len(body) == 0 {
		return
	}

	// UseNumber keeps numeric leaves as their literal text, so large
	// integers survive the decode/re-encode round trip intact.
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var parsed interface{}
	if err := decoder.Decode(&parsed); err != nil {
		return
	}
	if decoder.More() {
		// Trailing content after the document; leave the body alone.
		return
	}

	cleaned, err := json.Marshal(s.sanitizeValue("", parsed))
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to re-encode sanitized body")
		return
	}

	c.Request().SetBody(cleaned)
}

func (s *Sanitizer) sanitizeFormBody(c *fiber.Ctx) {
	args := c.Request().PostArgs()
	if args == nil {
		return
	}

	type pair struct{ key, value string }
	var pairs []pair
	args.VisitAll(func(key, value []byte) {
		pairs = append(pairs, pair{key: string(key), value: string(value)})
	})

	for _, p := range pairs {
		args.Set(p.key, s.SanitizeString(p.key, p.value))
	}
}

func (s *Sanitizer) sanitizeValue(field string, value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return s.SanitizeString(field, v)
	case json.Number:
		return v
	case map[string]interface{}:
		for key, nested := range v {
			v[key] = s.sanitizeValue(key, nested)
		}
		return v
	case []interface{}:
		for i, item := range v {
			v[i] = s.sanitizeValue(field, item)
		}
		return v
	default:
		return value
	}
}

// SanitizeString strips dangerous constructs from one string leaf and,
// unless the field is rich-text-allowed, escapes the remainder.
func (s *Sanitizer) SanitizeString(field, value string) string {
	value = nullBytePattern.ReplaceAllString(value, "")
	value = scriptTagPattern.ReplaceAllString(value, "")
	value = danglingScriptOpen.ReplaceAllString(value, "")
	value = eventHandlerPattern.ReplaceAllString(value, "")
	value = scriptSchemePattern.ReplaceAllString(value, "")

	if _, rich := s.richText[strings.ToLower(field)]; rich {
		return s.ugc.Sanitize(value)
	}

	return html.EscapeString(value)
}
