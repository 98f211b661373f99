package prompts

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used for unknown output languages
const DefaultLanguage = "en"

// Template is the notes prompt for one language
type Template struct {
	Intro            string   `yaml:"intro"`
	Sections         []string `yaml:"sections"`
	TranscriptHeader string   `yaml:"transcript_header"`
}

var defaults = map[string]Template{
	"pl": {
		Intro:            "Działaj jako ekspert ds. komunikacji i robienia notatek. Stwórz notatki z treści Transkrypcji w następującym formacie:",
		Sections:         []string{"Najważniejsze ustalenia", "Zadania do wykonania", "Dodatkowe notatki"},
		TranscriptHeader: "Treść Transkrypcji:",
	},
	"en": {
		Intro:            "Act as an expert in communication and note-taking. Create notes from the Transcription content in the following format:",
		Sections:         []string{"Key Decisions", "Tasks to Complete", "Additional Notes"},
		TranscriptHeader: "Transcription content:",
	},
	"de": {
		Intro:            "Agiere als Experte für Kommunikation und Notizenmachen. Erstelle Notizen aus dem Inhalt der Transkription im folgenden Format:",
		Sections:         []string{"Wichtige Entscheidungen", "Zu erledigende Aufgaben", "Zusätzliche Notizen"},
		TranscriptHeader: "Inhalt der Transkription:",
	},
	"fr": {
		Intro:            "Agis en tant qu'expert en communication et en prise de notes. Crée des notes à partir du contenu de la Transcription au format suivant :",
		Sections:         []string{"Décisions importantes", "Tâches à accomplir", "Notes supplémentaires"},
		TranscriptHeader: "Contenu de la transcription :",
	},
	"es": {
		Intro:            "Actúa como un experto en comunicación y toma de notas. Crea notas del contenido de la Transcripción en el siguiente formato:",
		Sections:         []string{"Decisiones Clave", "Tareas a Completar", "Notas Adicionales"},
		TranscriptHeader: "Contenido de la transcripción:",
	},
}

// Set is the collection of notes templates keyed by language code
type Set struct {
	templates map[string]Template
}

// Default returns the built-in templates
func Default() *Set {
	templates := make(map[string]Template, len(defaults))
	for lang, t := range defaults {
		templates[lang] = t
	}
	return &Set{templates: templates}
}

// Load returns the built-in templates overridden by the YAML file at path.
// An empty path returns the defaults.
func Load(path string) (*Set, error) {
	set := Default()
	if path == "" {
		return set, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	var overrides map[string]Template
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	for lang, t := range overrides {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if len(t.Sections) != 3 {
			return nil, fmt.Errorf("prompts file %s: language %q must define exactly 3 sections", path, lang)
		}
		if t.Intro == "" || t.TranscriptHeader == "" {
			return nil, fmt.Errorf("prompts file %s: language %q needs intro and transcript_header", path, lang)
		}
		set.templates[lang] = t
	}
	return set, nil
}

// Languages returns the output languages with a template
func (s *Set) Languages() []string {
	out := make([]string, 0, len(s.templates))
	for _, lang := range []string{"pl", "en", "de", "fr", "es"} {
		if _, ok := s.templates[lang]; ok {
			out = append(out, lang)
		}
	}
	var extra []string
	for lang := range s.templates {
		if _, builtin := defaults[lang]; !builtin {
			extra = append(extra, lang)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Resolve returns the template language actually used for lang
func (s *Set) Resolve(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := s.templates[lang]; ok {
		return lang
	}
	return DefaultLanguage
}

// SectionMarkers returns the bold section headings expected in notes
// written in lang
func (s *Set) SectionMarkers(lang string) []string {
	t := s.templates[s.Resolve(lang)]
	markers := make([]string, len(t.Sections))
	for i, section := range t.Sections {
		markers[i] = fmt.Sprintf("**%s**", section)
	}
	return markers
}

// NotesPrompt renders the notes request for transcript in lang
func (s *Set) NotesPrompt(transcript, lang string) (string, string) {
	resolved := s.Resolve(lang)
	t := s.templates[resolved]

	var b strings.Builder
	b.WriteString(t.Intro)
	b.WriteString("\n")
	for i, section := range t.Sections {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, section)
	}
	b.WriteString("\n")
	b.WriteString(t.TranscriptHeader)
	b.WriteString("\n")
	b.WriteString(transcript)
	return b.String(), resolved
}

// AnalysisPrompt renders a free-form instruction over the transcript. The
// model is asked to answer in the language of the instruction.
func AnalysisPrompt(transcript, priorNotes, instruction string, includePrior bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Perform the following task: \"%s\" based on the transcription. Write in language that the task is written in.\n\n", instruction)
	b.WriteString("**Transcription:**\n")
	b.WriteString(transcript)
	if includePrior {
		b.WriteString("\n\n**Previous notes:**\n")
		b.WriteString(priorNotes)
	}
	return b.String()
}
