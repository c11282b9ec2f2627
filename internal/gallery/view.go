package gallery

import (
	"fmt"

	"swingtube/internal/core"
)

// Page texts.
const (
	LoadingMessage = "Cargando datos..."
	ErrorMessage   = "No se han podido cargar los datos. Comprueba que la hoja está publicada como CSV y que la URL es correcta."
	VideoFallback  = "Tu navegador no soporta video."
)

// View is everything the gallery page renders for one selection.
type View struct {
	SessionID string
	State     State
	Selection core.Selection
	Months    []core.MonthOption
	Years     []int
	Cards     []Card
	Total     int // records loaded, before filtering
}

// Card is one rendered record.
type Card struct {
	Title   string
	Caption string
	URL     string
	Kind    core.Kind
}

func newCard(r core.Record) Card {
	return Card{
		Title:   r.Title,
		Caption: r.Month + "/" + r.Year,
		URL:     r.URL,
		Kind:    r.Kind(),
	}
}

func (c Card) IsVideo() bool { return c.Kind == core.KindVideo }
func (c Card) IsFrame() bool { return c.Kind == core.KindFrame }
func (c Card) IsText() bool  { return c.Kind == core.KindText }

func (v View) Loading() bool { return v.State == StateLoading }
func (v View) Failed() bool  { return v.State == StateFailed }
func (v View) Ready() bool   { return v.State == StateReady }

// Empty reports a settled, successful load with no matching records.
func (v View) Empty() bool { return v.Ready() && len(v.Cards) == 0 }

// EmptyMessage is the placeholder shown when no record matches.
func (v View) EmptyMessage() string {
	return fmt.Sprintf("No hay videos del %d/%d", v.Selection.Month, v.Selection.Year)
}

// Message is the single status line for loading and failed views.
func (v View) Message() string {
	switch v.State {
	case StateLoading:
		return LoadingMessage
	case StateFailed:
		return ErrorMessage
	default:
		return ""
	}
}
