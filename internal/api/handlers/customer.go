package handlers

import (
	"net/http"
	"strconv"

	"github.com/dom/mini-crm/internal/api/middleware"
	"github.com/dom/mini-crm/internal/api/response"
	"github.com/dom/mini-crm/internal/domain"
	"github.com/dom/mini-crm/internal/service"
	"github.com/dom/mini-crm/internal/whatsapp"
	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	customerService *service.CustomerService
	linker          *whatsapp.Linker
}

func NewCustomerHandler(customerService *service.CustomerService, linker *whatsapp.Linker) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, linker: linker}
}

// CustomerRequest fields left out of an update keep their stored value.
type CustomerRequest struct {
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Tags         *[]string `json:"tags"`
	Notes        *string   `json:"notes"`
	FollowUpDate *string   `json:"follow_up_date"`
}

func (req CustomerRequest) input() service.CustomerInput {
	return service.CustomerInput{
		Name:         req.Name,
		Phone:        req.Phone,
		Tags:         req.Tags,
		Notes:        req.Notes,
		FollowUpDate: req.FollowUpDate,
	}
}

// CustomerResponse renders the follow-up date as YYYY-MM-DD and adds the
// WhatsApp link.
type CustomerResponse struct {
	*domain.Customer
	FollowUpDate *string `json:"follow_up_date"`
	WhatsAppLink string  `json:"whatsapp_link"`
}

func (h *CustomerHandler) toResponse(c *domain.Customer, message string) CustomerResponse {
	resp := CustomerResponse{
		Customer:     c,
		WhatsAppLink: h.linker.Link(c.Phone, message),
	}
	if day := c.FollowUpDay(); day != "" {
		resp.FollowUpDate = &day
	}
	return resp
}

func (h *CustomerHandler) toResponses(customers []*domain.Customer, followUp bool) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		message := ""
		if followUp {
			message = whatsapp.FollowUpMessage(c.Name, "")
		}
		out = append(out, h.toResponse(c, message))
	}
	return out
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	customers, err := h.customerService.List(r.Context(), user.ID, limit, offset)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"customers": h.toResponses(customers, false),
	})
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req CustomerRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	customer, err := h.customerService.Create(r.Context(), user.ID, req.input())
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Customer created successfully",
		"customer": h.toResponse(customer, ""),
	})
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	id, ok := customerID(r)
	if !ok {
		response.Error(w, r, domain.ErrCustomerNotFound)
		return
	}

	customer, err := h.customerService.Get(r.Context(), user.ID, id)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"customer": h.toResponse(customer, ""),
	})
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	id, ok := customerID(r)
	if !ok {
		response.Error(w, r, domain.ErrCustomerNotFound)
		return
	}

	var req CustomerRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	customer, err := h.customerService.Update(r.Context(), user.ID, id, req.input())
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Customer updated successfully",
		"customer": h.toResponse(customer, ""),
	})
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	id, ok := customerID(r)
	if !ok {
		response.Error(w, r, domain.ErrCustomerNotFound)
		return
	}

	if err := h.customerService.Delete(r.Context(), user.ID, id); err != nil {
		response.Error(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "Customer deleted successfully")
}

func (h *CustomerHandler) FollowUps(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	customers, day, err := h.customerService.FollowUps(r.Context(), user.ID, r.URL.Query().Get("date"))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"followups": h.toResponses(customers, true),
		"date":      day,
	})
}

func (h *CustomerHandler) Tags(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	tags, err := h.customerService.Tags(r.Context(), user.ID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
}

func (h *CustomerHandler) PopularTags(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	tags, err := h.customerService.PopularTags(r.Context(), user.ID, queryInt(r, "limit", 0))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
}

func customerID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
