package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"kartela/internal/whatsapp"
)

const msgWhatsAppUnavailable = "WhatsApp iletişimi etkin değil"

// WhatsAppLink handles GET /api/whatsapp/link.
func (h *Catalog) WhatsAppLink(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.GetWhatsAppSettings(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	link, err := whatsapp.Link(s)
	if errors.Is(err, whatsapp.ErrUnavailable) {
		writeError(w, http.StatusNotFound, msgWhatsAppUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"link": link})
}

// WhatsAppQR handles GET /api/whatsapp/qr.png?size=N.
func (h *Catalog) WhatsAppQR(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.GetWhatsAppSettings(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	png, err := whatsapp.QRCode(s, size)
	if errors.Is(err, whatsapp.ErrUnavailable) {
		writeError(w, http.StatusNotFound, msgWhatsAppUnavailable)
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
