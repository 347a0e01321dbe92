// Package i18n holds the user-facing strings of VisorX. Spanish is the
// default locale; English is also available.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	Greeting      = "greeting"
	EmptyInput    = "empty_input"
	ImageError    = "image_error"
	RemoteError   = "remote_error"
	UnknownError  = "unknown_error"
	Analyzing     = "analyzing"
	Initializing  = "initializing"
	Sources       = "sources"
	Placeholder   = "placeholder"
	AttachImage   = "attach_image"
	RemoveImage   = "remove_image"
	Send          = "send"
	ImageAttached = "image_attached"
	ImageUsage    = "image_usage"
)

var (
	Spanish = language.Spanish
	English = language.English
)

var entries = map[string]map[language.Tag]string{
	Greeting: {
		Spanish: "Hola, soy VisorX. Tu asistente financiero personal. ¿Qué te gustaría analizar hoy? Puedes preguntar sobre acciones, países, tendencias económicas, o subir una imagen para analizar.",
		English: "Hi, I'm VisorX, your personal financial assistant. What would you like to analyze today? You can ask about stocks, countries, economic trends, or upload an image to analyze.",
	},
	EmptyInput: {
		Spanish: "Por favor, escribe un mensaje o sube una imagen para analizar.",
		English: "Please write a message or upload an image to analyze.",
	},
	ImageError: {
		Spanish: "Lo siento, hubo un error procesando la imagen. Por favor, inténtalo de nuevo.",
		English: "Sorry, there was an error processing the image. Please try again.",
	},
	RemoteError: {
		Spanish: "Lo siento, ocurrió un error. %s",
		English: "Sorry, an error occurred. %s",
	},
	UnknownError: {
		Spanish: "No pude procesar tu solicitud.",
		English: "I could not process your request.",
	},
	Analyzing: {
		Spanish: "VisorX está analizando...",
		English: "VisorX is analyzing...",
	},
	Initializing: {
		Spanish: "Analizando...",
		English: "Analyzing...",
	},
	Sources: {
		Spanish: "FUENTES CONSULTADAS",
		English: "SOURCES CONSULTED",
	},
	Placeholder: {
		Spanish: "Pregúntale a VisorX (o sube una imagen)...",
		English: "Ask VisorX (or upload an image)...",
	},
	AttachImage: {
		Spanish: "Adjuntar imagen",
		English: "Attach image",
	},
	RemoveImage: {
		Spanish: "Quitar imagen",
		English: "Remove image",
	},
	Send: {
		Spanish: "Enviar",
		English: "Send",
	},
	ImageAttached: {
		Spanish: "Imagen adjunta: %s",
		English: "Image attached: %s",
	},
	ImageUsage: {
		Spanish: "Uso: /image <ruta|url>",
		English: "Usage: /image <path|url>",
	},
}

var cat = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(Spanish))
	for key, byLang := range entries {
		for tag, text := range byLang {
			if err := b.SetString(tag, key, text); err != nil {
				panic("i18n: " + err.Error())
			}
		}
	}
	return b
}

// Printer formats localized strings.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// NewPrinter returns a printer for the best supported match of locale
// (e.g. "es", "en-US"). Unknown locales fall back to Spanish.
func NewPrinter(locale string) *Printer {
	tag := Spanish
	if t, err := language.Parse(locale); err == nil {
		matcher := language.NewMatcher([]language.Tag{Spanish, English})
		_, idx, conf := matcher.Match(t)
		if conf != language.No && idx == 1 {
			tag = English
		}
	}
	return &Printer{tag: tag, p: message.NewPrinter(tag, message.Catalog(cat))}
}

// Tag returns the printer's language.
func (p *Printer) Tag() language.Tag {
	return p.tag
}

// Sprintf returns the localized string for key.
func (p *Printer) Sprintf(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}
