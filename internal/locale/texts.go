package locale

import (
	"fmt"
	"time"
)

// Texts is the string table for one teaching language.
type Texts struct {
	// Persona is the instructional prelude sent ahead of the learning summary.
	Persona string

	NewStudent      string
	ContextHeader   string
	SessionsLine    string // %d
	LastSessionLine string // %s
	TopicsLine      string // %s
	VocabularyLine  string // %s
	ContextClosing  string
	Never           string
	ListSeparator   string
	DateLayout      string

	MissingCredential string
	FaultWrapper      string // %s
	Thinking          string
	Busy              string

	Welcome       string
	WelcomeBack   string // %s
	SessionInfo   string // %d, %s
	LanguageSet   string // %s
	ContextReset  string
	ClearConfirm  string
	ClearDone     string
	ClearCanceled string
	ClearYes      string
	ClearNo       string
	Reminder      string // %s

	ProgressTitle      string
	ProgressSessions   string
	ProgressWords      string
	ProgressTopics     string
	ProgressMessages   string
	ProgressSince      string
	ProgressTopicsHead string
	ProgressVocabHead  string
	ProgressEmpty      string
}

var english = Texts{
	Persona: `You are an expert Dutch (Nederlands) language teacher. Your role is:
- Teach Dutch in a clear and engaging way
- Give ALL explanations in ENGLISH
- Teach Dutch words and phrases, but explain in English
- Provide examples and clear explanations
- Correct mistakes gently and constructively
- Adapt to the student's level
- Make learning fun and interactive
- Use simple language when explaining complex concepts
- Provide pronunciation tips when relevant
- Always respond in English (except for the Dutch words/phrases you're teaching)

Be encouraging and patient. Keep responses concise and mobile-friendly.`,

	NewStudent:      "This is a completely new student. No previous learning history.",
	ContextHeader:   "STUDENT CONTEXT:",
	SessionsLine:    "- Has had %d learning sessions",
	LastSessionLine: "- Last session: %s",
	TopicsLine:      "- Recently studied topics: %s",
	VocabularyLine:  "- Recently learned vocabulary: %s",
	ContextClosing:  "USE THIS CONTEXT to personalize your teaching. Ask if they want to review previous topics or learn something new.",
	Never:           "Never",
	ListSeparator:   ", ",
	DateLayout:      "1/2/2006",

	MissingCredential: "Please enter your API key first!",
	FaultWrapper:      "Error: %s. Please check your API key and try again.",
	Thinking:          "💭 Teacher is thinking...",
	Busy:              "Please wait, the teacher is still answering your previous message.",

	Welcome:       "Hello! I'm your Dutch teacher. I'll teach you Nederlands and explain everything in English. What would you like to learn today?",
	WelcomeBack:   "Welcome back! 🎉\n\nYour last session was on %s. I've reviewed your learning history and know what topics you've been working on.\n\nWould you like to review what you learned before, or learn something new?",
	SessionInfo:   "Sessions: %d | Last visit: %s",
	LanguageSet:   "Explanations will now be given in %s.",
	ContextReset:  "Conversation context cleared.",
	ClearConfirm:  "Are you sure you want to clear all your progress? This action cannot be undone.",
	ClearDone:     "✅ Progress cleared. Let's start fresh!",
	ClearCanceled: "Your progress was kept.",
	ClearYes:      "Yes, clear",
	ClearNo:       "Cancel",
	Reminder:      "⏰ Time for some Dutch practice! Your last session was on %s.",

	ProgressTitle:      "📊 Your progress",
	ProgressSessions:   "Sessions",
	ProgressWords:      "Words",
	ProgressTopics:     "Topics",
	ProgressMessages:   "Messages",
	ProgressSince:      "Learning since",
	ProgressTopicsHead: "📚 Topics Studied",
	ProgressVocabHead:  "📝 Recent Vocabulary",
	ProgressEmpty:      "Start learning to see your progress here!",
}

var spanish = Texts{
	Persona: `Eres un profesor experto de holandés (Nederlands). Tu rol es:
- Enseñar holandés de manera clara y atractiva
- Dar TODAS las explicaciones en ESPAÑOL
- Enseñar palabras y frases en holandés, pero explicar en español
- Proporcionar ejemplos y explicaciones claras
- Corregir errores de manera amable y constructiva
- Adaptarte al nivel del estudiante
- Hacer que el aprendizaje sea divertido e interactivo
- Usar lenguaje simple al explicar conceptos complejos
- Proporcionar consejos de pronunciación cuando sea relevante
- Siempre responder en español (excepto las palabras/frases en holandés que estás enseñando)

Sé alentador y paciente. Mantén las respuestas concisas y fáciles de leer en móvil.`,

	NewStudent:      "Este es un estudiante completamente nuevo. No tiene historial de aprendizaje previo.",
	ContextHeader:   "CONTEXTO DEL ESTUDIANTE:",
	SessionsLine:    "- Ha tenido %d sesiones de aprendizaje",
	LastSessionLine: "- Última sesión: %s",
	TopicsLine:      "- Temas estudiados recientemente: %s",
	VocabularyLine:  "- Vocabulario aprendido recientemente: %s",
	ContextClosing:  "USA ESTE CONTEXTO para personalizar tu enseñanza. Pregunta si quiere revisar temas anteriores o aprender algo nuevo.",
	Never:           "Nunca",
	ListSeparator:   ", ",
	DateLayout:      "2/1/2006",

	MissingCredential: "¡Por favor, ingresa tu API key primero!",
	FaultWrapper:      "Error: %s. Por favor verifica tu API key e intenta de nuevo.",
	Thinking:          "💭 El profesor está pensando...",
	Busy:              "Espera un momento, el profesor todavía está respondiendo tu mensaje anterior.",

	Welcome:       "¡Hola! Soy tu profesor de holandés. Te enseñaré Nederlands y explicaré todo en español. ¿Qué te gustaría aprender hoy?",
	WelcomeBack:   "¡Bienvenido de vuelta! 🎉\n\nTu última sesión fue el %s. He revisado tu historial de aprendizaje y sé en qué temas has estado trabajando.\n\n¿Quieres repasar lo que aprendiste antes o prefieres aprender algo nuevo?",
	SessionInfo:   "Sesiones: %d | Última visita: %s",
	LanguageSet:   "Las explicaciones ahora serán en %s.",
	ContextReset:  "Contexto de la conversación borrado.",
	ClearConfirm:  "¿Estás seguro de que quieres borrar todo tu progreso? Esta acción no se puede deshacer.",
	ClearDone:     "✅ Progreso borrado. ¡Empecemos de nuevo!",
	ClearCanceled: "Tu progreso se ha conservado.",
	ClearYes:      "Sí, borrar",
	ClearNo:       "Cancelar",
	Reminder:      "⏰ ¡Hora de practicar holandés! Tu última sesión fue el %s.",

	ProgressTitle:      "📊 Tu progreso",
	ProgressSessions:   "Sesiones",
	ProgressWords:      "Palabras",
	ProgressTopics:     "Temas",
	ProgressMessages:   "Mensajes",
	ProgressSince:      "Aprendiendo desde",
	ProgressTopicsHead: "📚 Temas Estudiados",
	ProgressVocabHead:  "📝 Vocabulario Reciente",
	ProgressEmpty:      "¡Empieza a aprender para ver tu progreso aquí!",
}

// TextsFor returns the string table for l, falling back to English.
func TextsFor(l Language) Texts {
	if l == Spanish {
		return spanish
	}
	return english
}

// FormatDate renders t in the local calendar format of l.
func (l Language) FormatDate(t time.Time) string {
	return t.Format(TextsFor(l).DateLayout)
}

// DisplayName is how the language is called in its own texts.
func (l Language) DisplayName() string {
	switch l {
	case Spanish:
		return "español"
	default:
		return "English"
	}
}

// Fault wraps a remote failure description into the user-visible message.
func (l Language) Fault(detail string) string {
	return fmt.Sprintf(TextsFor(l).FaultWrapper, detail)
}
