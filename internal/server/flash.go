package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"unicode/utf8"
)

// FlashCookie carries notifications across the post/redirect/get cycle
const FlashCookie = "deckgen_flash"

// maxFlashMessage keeps the cookie well below browser size limits
const maxFlashMessage = 1500

// Flash levels, used as CSS classes by the templates
const (
	LevelSuccess = "success"
	LevelDanger  = "danger"
)

// Flash is one pending notification
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// addFlash appends a notification to those already pending on the request
func addFlash(w http.ResponseWriter, r *http.Request, level, message string) {
	flashes := append(readFlashes(r), Flash{Level: level, Message: truncateMessage(message, maxFlashMessage)})

	data, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// truncateMessage cuts message to at most limit bytes on a character
// boundary and marks the cut with "..."
func truncateMessage(message string, limit int) string {
	if len(message) <= limit {
		return message
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut] + "..."
}

// popFlashes returns the pending notifications and clears them
func popFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if len(flashes) > 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     FlashCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return flashes
}

func readFlashes(r *http.Request) []Flash {
	c, err := r.Cookie(FlashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
