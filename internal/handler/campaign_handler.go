// internal/handler/campaign_handler.go
package handler

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/saintgrid/bulkmail-backend/internal/apperrors"
	"github.com/saintgrid/bulkmail-backend/internal/model"
	"github.com/saintgrid/bulkmail-backend/internal/service"
	"github.com/saintgrid/bulkmail-backend/internal/source"
)

const maxUploadBytes = 32 << 20

// CampaignStarter is the enqueue path behind the HTTP boundary.
type CampaignStarter interface {
	Start(req model.CampaignRequest) (*service.StartResult, error)
}

// CampaignReader serves the stats route.
type CampaignReader interface {
	GetByID(id string) (*model.Campaign, error)
	GetStats(id string) (*model.CampaignStats, error)
}

// CampaignHandler holds the dependencies for campaign-related HTTP handlers
type CampaignHandler struct {
	Service CampaignStarter
	Repo    CampaignReader
}

// SendCampaign handles the multipart upload route: a delimited recipient
// file plus template, subject and relay settings. Spreadsheet files must
// be tabulated by the upload client and sent to SendCampaignRows; this
// route never decodes workbooks.
func (h *CampaignHandler) SendCampaign(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, apperrors.NewMissingData("multipart form"))
		return
	}

	file, header, err := r.FormFile("recipientFile")
	if err != nil {
		writeError(w, apperrors.NewMissingData("recipientFile"))
		return
	}
	defer file.Close()

	htmlTemplate := r.FormValue("htmlTemplate")
	if htmlTemplate == "" {
		writeError(w, apperrors.NewMissingData("htmlTemplate"))
		return
	}

	format, err := source.ResolveFormat(header.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	if format == source.FormatSpreadsheet {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "spreadsheet uploads must be tabulated and sent to /campaigns/send-rows",
		})
		return
	}

	rows, err := readDelimited(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "failed to parse recipient file: " + err.Error(),
		})
		return
	}

	port, err := formInt(r, "port")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	delaySeconds, err := formInt(r, "delaySeconds")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	recipients := source.Normalize(source.Source{Format: format, Rows: rows})
	req := model.CampaignRequest{
		HTMLTemplate: htmlTemplate,
		SMTP: model.SMTPConfig{
			Host:     r.FormValue("host"),
			Port:     port,
			Username: r.FormValue("user"),
			Password: r.FormValue("pass"),
		},
		Subject:      r.FormValue("subject"),
		From:         r.FormValue("from"),
		Recipients:   recipients,
		DelaySeconds: delaySeconds,
	}

	h.start(w, req)
}

// SendCampaignRows handles pre-tabulated recipient lists (the upload
// collaborator owns workbook decoding). The original filename still
// resolves the format tag so spreadsheet header semantics apply.
func (h *CampaignHandler) SendCampaignRows(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FileName     string           `json:"fileName"`
		Rows         [][]string       `json:"rows"`
		HTMLTemplate string           `json:"htmlTemplate"`
		SMTP         model.SMTPConfig `json:"smtp"`
		Subject      string           `json:"subject"`
		From         string           `json:"from"`
		DelaySeconds int              `json:"delaySeconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if len(body.Rows) == 0 {
		writeError(w, apperrors.NewMissingData("rows"))
		return
	}
	if body.DelaySeconds < 0 {
		writeBadRequest(w, fmt.Errorf("invalid delaySeconds: must not be negative"))
		return
	}

	format, err := source.ResolveFormat(body.FileName)
	if err != nil {
		writeError(w, err)
		return
	}

	recipients := source.Normalize(source.Source{Format: format, Rows: body.Rows})
	req := model.CampaignRequest{
		HTMLTemplate: body.HTMLTemplate,
		SMTP:         body.SMTP,
		Subject:      body.Subject,
		From:         body.From,
		Recipients:   recipients,
		DelaySeconds: body.DelaySeconds,
	}

	h.start(w, req)
}

func (h *CampaignHandler) start(w http.ResponseWriter, req model.CampaignRequest) {
	result, err := h.Service.Start(req)
	if err != nil {
		log.Println("Failed to start campaign:", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"success":     true,
		"message":     fmt.Sprintf("Bulk email sending process started. %d emails queued for sending.", result.Recipients),
		"campaign_id": result.CampaignID,
		"recipients":  result.Recipients,
		"batches":     result.Batches,
	})
}

// GetCampaign returns the bookkeeping row plus aggregated batch outcomes.
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := h.Repo.GetByID(id)
	if err != nil {
		http.Error(w, "failed to fetch campaign: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if campaign == nil {
		http.Error(w, "campaign not found", http.StatusNotFound)
		return
	}

	stats, err := h.Repo.GetStats(id)
	if err != nil {
		http.Error(w, "failed to fetch campaign stats: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"campaign": campaign,
		"stats":    stats,
	})
}

// readDelimited tabulates a .txt/.csv upload. Variable field counts are
// allowed so bare email-per-line files parse as single-column rows.
func readDelimited(file multipart.File) ([][]string, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var missing *apperrors.ErrMissingData
	var unsupported *apperrors.ErrUnsupportedFormat
	var badSize *apperrors.ErrInvalidBatchSize
	var unreachable *apperrors.ErrSMTPUnreachable

	switch {
	case errors.As(err, &missing), errors.As(err, &unsupported), errors.As(err, &badSize):
		status = http.StatusBadRequest
	case errors.As(err, &unreachable):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// formInt parses a required non-negative integer form field; malformed
// values are a bad request, never a silent zero.
func formInt(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.FormValue(name))
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", name)
	}
	return n, nil
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"success": false,
		"message": err.Error(),
	})
}
