package core

import "strings"

// Kind is the way a record's media is presented on its card.
type Kind int

const (
	// KindText shows only the title; the record has no URL.
	KindText Kind = iota
	// KindVideo plays an MP4 file in a native video element.
	KindVideo
	// KindFrame embeds an external player page in an iframe.
	KindFrame
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindFrame:
		return "frame"
	default:
		return "text"
	}
}

// KindOf classifies a media URL. The ".mp4" suffix check is literal and
// case-sensitive.
func KindOf(url string) Kind {
	switch {
	case url == "":
		return KindText
	case strings.HasSuffix(url, ".mp4"):
		return KindVideo
	default:
		return KindFrame
	}
}

// Kind returns how the record is presented.
func (r Record) Kind() Kind {
	return KindOf(r.URL)
}
