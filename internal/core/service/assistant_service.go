package service

import (
	"embed"
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"unicode"

	"golang.org/x/text/language"

	"github.com/civicpulse/grievance-portal/internal/core/ports"
)

//go:embed catalog/*.json
var catalogFS embed.FS

// Assistant intents, in match priority order. Greeting comes last so that
// "hi, how do I file a complaint" resolves to the complaint answer.
const (
	IntentFileComplaint = "file_complaint"
	IntentTrackCase     = "track_case"
	IntentTownhall      = "townhall"
	IntentHelp          = "help"
	IntentGreeting      = "greeting"
	IntentFallback      = "fallback"
)

var intentOrder = []string{IntentFileComplaint, IntentTrackCase, IntentTownhall, IntentHelp, IntentGreeting}

// DefaultLanguage is served when negotiation finds nothing better.
const DefaultLanguage = "en"

var supportedLanguages = []language.Tag{
	language.English, // first tag is the matcher's fallback
	language.Hindi,
	language.Tamil,
}

type catalog struct {
	Messages map[string]string   `json:"messages"`
	Keywords map[string][]string `json:"keywords"`
}

type AssistantService struct {
	matcher  language.Matcher
	catalogs map[string]catalog
}

var _ ports.AssistantService = (*AssistantService)(nil)

// NewAssistantService loads the embedded message tables. It fails only if a
// catalog is missing or malformed.
func NewAssistantService() (*AssistantService, error) {
	s := &AssistantService{
		matcher:  language.NewMatcher(supportedLanguages),
		catalogs: make(map[string]catalog, len(supportedLanguages)),
	}
	for _, tag := range supportedLanguages {
		code := baseCode(tag)
		data, err := catalogFS.ReadFile("catalog/" + code + ".json")
		if err != nil {
			return nil, fmt.Errorf("assistant catalog %s: %w", code, err)
		}
		var c catalog
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("assistant catalog %s: %w", code, err)
		}
		if c.Messages[IntentFallback] == "" {
			return nil, fmt.Errorf("assistant catalog %s: missing %q message", code, IntentFallback)
		}
		s.catalogs[code] = c
	}
	return s, nil
}

// Language prefers an explicit code over the Accept-Language header.
func (s *AssistantService) Language(code, acceptLanguage string) string {
	if code = strings.TrimSpace(code); code != "" {
		if tag, err := language.Parse(code); err == nil {
			if matched, _, conf := s.matcher.Match(tag); conf != language.No {
				return baseCode(matched)
			}
		}
	}
	if acceptLanguage != "" {
		tag, _ := language.MatchStrings(s.matcher, acceptLanguage)
		return s.supported(baseCode(tag))
	}
	return DefaultLanguage
}

// Messages returns a copy of the table for lang, English when unknown.
func (s *AssistantService) Messages(lang string) map[string]string {
	return maps.Clone(s.catalogs[s.supported(lang)].Messages)
}

// Reply classifies message by keyword and answers in lang. Keywords of the
// chosen language are tried before the English ones.
func (s *AssistantService) Reply(lang, message string) ports.AssistantReply {
	lang = s.supported(lang)
	c := s.catalogs[lang]

	intent := s.classify(message, c)
	if intent == IntentFallback && lang != DefaultLanguage {
		intent = s.classify(message, s.catalogs[DefaultLanguage])
	}

	text, ok := c.Messages[intent]
	if !ok {
		intent, text = IntentFallback, c.Messages[IntentFallback]
	}
	return ports.AssistantReply{Lang: lang, Intent: intent, Text: text}
}

func (s *AssistantService) classify(message string, c catalog) string {
	lower := strings.ToLower(message)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r) && !unicode.IsDigit(r)
	})
	for _, intent := range intentOrder {
		for _, kw := range c.Keywords[intent] {
			if keywordMatches(kw, lower, words) {
				return intent
			}
		}
	}
	return IntentFallback
}

// keywordMatches matches single ASCII words exactly and everything else
// (phrases, Indic stems) as a substring.
func keywordMatches(kw, lower string, words []string) bool {
	if isASCIIWord(kw) {
		for _, w := range words {
			if w == kw {
				return true
			}
		}
		return false
	}
	return strings.Contains(lower, kw)
}

func isASCIIWord(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func (s *AssistantService) supported(lang string) string {
	if _, ok := s.catalogs[lang]; ok {
		return lang
	}
	return DefaultLanguage
}

func baseCode(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
