package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"unicode"

	"github.com/vocadex/vocadex/internal/dictionary"
	"github.com/vocadex/vocadex/internal/entities"
)

// MaxSentenceWords caps how long an analysed sentence may be; anything
// longer is rejected before any lookup is attempted.
const MaxSentenceWords = 200

// ErrSentenceTooLong is returned when the input exceeds MaxSentenceWords.
var ErrSentenceTooLong = errors.New("sentence too long")

// stopWords are common function words with no study value. They are
// dropped during extraction so the result is only the words worth
// turning into cards.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"the a an " +
			"and or but yet for nor so " +
			"is are was were be been being " +
			"have has had do does did " +
			"will would could should may might must can " +
			"of in on at to with by from as " +
			"into through during before after above below " +
			"i you he she it we they me him her " +
			"my your his its our their " +
			"this that these those " +
			"what which who whom when where why how " +
			"not no yes very just also too much there here") {
		stopWords[w] = struct{}{}
	}
}

// IsSentence reports whether the input should be treated as a sentence
// rather than a single word. Three words is the threshold.
func IsSentence(input string) bool {
	return len(strings.Fields(input)) >= 3
}

// ExtractWords returns a sentence's study-worthy words in order of
// first appearance: stripped of punctuation, lowercased and
// deduplicated, with single characters and stop words dropped.
func ExtractWords(sentence string) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, raw := range strings.Fields(sentence) {
		w := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
				return unicode.ToLower(r)
			}
			return -1
		}, raw)

		if len(w) < 2 {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// SentenceWord is one extracted word with its resolved primary sense.
type SentenceWord struct {
	ID           string `json:"id"`
	Word         string `json:"word"`
	Phonetic     string `json:"phonetic"`
	PartOfSpeech string `json:"part_of_speech"`
	DefinitionEN string `json:"definition_en"`
	DefinitionZH string `json:"definition_zh"`
	Example      string `json:"example"`
}

// SentenceResult is the full analysis of one sentence.
type SentenceResult struct {
	Original    string         `json:"original"`
	Translation string         `json:"translation"`
	Words       []SentenceWord `json:"words"`
}

// SentenceService breaks a sentence into study-worthy words and
// resolves each against the dictionary.
type SentenceService struct {
	dict       dictionary.Client
	translator dictionary.Translator
}

func NewSentenceService(dict dictionary.Client, translator dictionary.Translator) *SentenceService {
	return &SentenceService{
		dict:       dict,
		translator: translator,
	}
}

// Analyze translates the sentence and looks up every extracted word,
// all in parallel. A word the dictionary cannot resolve is dropped
// from the result, never fatal; a failed definition translation
// degrades to the English text, and a failed sentence translation
// leaves Translation empty. The surviving words keep their order of
// first appearance.
func (s *SentenceService) Analyze(ctx context.Context, sentence string) (*SentenceResult, error) {
	if len(strings.Fields(sentence)) > MaxSentenceWords {
		return nil, ErrSentenceTooLong
	}

	res := &SentenceResult{Original: sentence, Words: []SentenceWord{}}
	extracted := ExtractWords(sentence)

	var wg sync.WaitGroup
	if s.translator != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if t, err := s.translator.Translate(ctx, sentence); err == nil {
				res.Translation = t
			} else {
				log.Printf("[SENTENCE] translation failed: %v", err)
			}
		}()
	}

	resolved := make([]*SentenceWord, len(extracted))
	for i, word := range extracted {
		wg.Add(1)
		go func(i int, word string) {
			defer wg.Done()
			resolved[i] = s.resolve(ctx, word)
		}(i, word)
	}
	wg.Wait()

	for _, w := range resolved {
		if w != nil {
			res.Words = append(res.Words, *w)
		}
	}
	return res, nil
}

func (s *SentenceService) resolve(ctx context.Context, word string) *SentenceWord {
	result, err := s.dict.Lookup(ctx, word)
	if err != nil {
		log.Printf("[SENTENCE] skipping %q: %v", word, err)
		return nil
	}
	if result == nil {
		return nil
	}

	w := &SentenceWord{
		ID:           entities.EntryID(result.Word, result.PartOfSpeech),
		Word:         result.Word,
		Phonetic:     result.Phonetic,
		PartOfSpeech: result.PartOfSpeech,
		DefinitionEN: result.DefinitionEN,
		DefinitionZH: result.DefinitionEN,
		Example:      result.Example,
	}
	if s.translator != nil {
		if zh, err := s.translator.Translate(ctx, result.DefinitionEN); err == nil {
			w.DefinitionZH = zh
		}
	}
	return w
}
