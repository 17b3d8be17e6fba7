package payment

import (
	"net/http"

	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/guard"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/respond"
	"github.com/MrJamesThe3rd/invoiceai/internal/importer"
)

const maxUpload = 10 << 20

type rejectionResponse struct {
	Line          int    `json:"line"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	Reason        string `json:"reason"`
}

type importResponse struct {
	Charset  string              `json:"charset"`
	Format   string              `json:"format"`
	Imported int                 `json:"imported"`
	Payments []paymentResponse   `json:"payments"`
	Rejected []rejectionResponse `json:"rejected"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respond.Error(w, r, apperr.Invalid("file", "failed to parse form: "+err.Error()))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, apperr.Invalid("file", "field required"))
		return
	}
	defer file.Close()

	res, err := h.importSvc.Import(r.Context(), guard.Scope(r), file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toImportResponse(res))
}

func toImportResponse(res *importer.Result) importResponse {
	resp := importResponse{
		Charset:  res.Charset,
		Format:   res.Profile,
		Imported: len(res.Created),
		Payments: toResponseList(res.Created),
		Rejected: make([]rejectionResponse, len(res.Rejected)),
	}

	for i, rej := range res.Rejected {
		resp.Rejected[i] = rejectionResponse{Line: rej.Line, InvoiceNumber: rej.InvoiceNumber, Reason: rej.Reason}
	}

	return resp
}
