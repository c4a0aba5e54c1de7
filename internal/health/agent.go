package health

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nimbusworks/nimbus"
)

// KnowledgeBase answers free-text health questions from curated content.
type KnowledgeBase interface {
	Query(ctx context.Context, query string) (string, error)
}

const assistantInstructions = `You are a friendly health assistant helping users understand their
symptoms and book doctor appointments.

Today's date is %s.

Guidelines:
- Use the health knowledge base to answer questions about symptoms,
  conditions, and treatments. Never invent medical facts.
- When the user wants an appointment, first list the available doctors,
  then offer slots that do not clash with their personal calendar.
- Confirm the slot with the user before booking.
- You are not a doctor. For urgent or severe symptoms, advise the user to
  seek professional care immediately.`

// Tools builds the assistant's tool set over the service and knowledge base.
// kb may be nil when no knowledge base is configured.
func Tools(service *Service, kb KnowledgeBase) ([]*nimbus.Tool, error) {
	getDoctors, err := nimbus.NewTool(
		"get_all_doctors",
		"Retrieve a list of all doctors available for appointments.",
		func(ctx context.Context, _ struct{}) (map[string]any, error) {
			doctors, err := service.Doctors(ctx)
			if err != nil {
				return map[string]any{"success": false, "error": "Unable to retrieve doctors list at this time"}, nil
			}
			return map[string]any{"success": true, "doctors": doctors, "count": len(doctors)}, nil
		})
	if err != nil {
		return nil, err
	}

	type slotsInput struct {
		DoctorName      string `json:"doctor_name" jsonschema:"name or partial name of the doctor to find appointments for"`
		UnavailableDate string `json:"unavailable_date,omitempty" jsonschema:"optional date in YYYY-MM-DD format when the user is not available"`
	}
	getSlots, err := nimbus.NewTool(
		"get_non_clashing_slots",
		"Get available appointment slots that don't conflict with the user's personal calendar events.",
		func(ctx context.Context, in slotsInput) (map[string]any, error) {
			if in.DoctorName == "" {
				return map[string]any{"success": false, "error": "Doctor name is required to find available slots"}, nil
			}
			slots, err := service.NonClashingSlots(ctx, in.DoctorName, in.UnavailableDate)
			if err != nil {
				return map[string]any{"success": false, "error": "Unable to retrieve available appointment slots at this time"}, nil
			}
			recommended, err := service.RecommendedSlots(ctx, slots)
			if err != nil {
				recommended = nil
			}
			return map[string]any{
				"success":            true,
				"non_clashing_slots": slots,
				"recommended_slots":  recommended,
				"doctor_searched":    in.DoctorName,
			}, nil
		})
	if err != nil {
		return nil, err
	}

	type bookInput struct {
		SlotID          string         `json:"slot_id" jsonschema:"the ID of the selected appointment slot"`
		UserID          string         `json:"user_id,omitempty" jsonschema:"optional user identifier"`
		SymptomsSummary map[string]any `json:"symptoms_summary,omitempty" jsonschema:"a structured summary of the user's symptoms"`
	}
	book, err := nimbus.NewTool(
		"book_appointment",
		"Book a doctor appointment in the selected time slot.",
		func(ctx context.Context, in bookInput) (map[string]any, error) {
			confirmation, err := service.Book(ctx, in.SlotID, in.UserID, in.SymptomsSummary)
			if err != nil {
				return map[string]any{"success": false, "error": "This appointment slot is not available or doesn't exist."}, nil
			}
			return map[string]any{
				"success":     true,
				"message":     "Appointment booked successfully!",
				"appointment": confirmation,
			}, nil
		})
	if err != nil {
		return nil, err
	}

	tools := []*nimbus.Tool{getDoctors, getSlots, book}

	if kb != nil {
		type kbInput struct {
			QueryText string `json:"query_text" jsonschema:"the health question, symptom description, or medical topic to search for"`
		}
		queryKB, err := nimbus.NewTool(
			"query_health_kb",
			"Search the health knowledge base for information about symptoms, conditions, treatments, or general health topics.",
			func(ctx context.Context, in kbInput) (map[string]any, error) {
				if in.QueryText == "" {
					return map[string]any{"success": false, "error": "Please provide a health question or symptom description to search for."}, nil
				}
				chunks, err := kb.Query(ctx, in.QueryText)
				if err != nil {
					return map[string]any{"success": false, "error": "Unable to search health knowledge base at this time. Please try again later."}, nil
				}
				return map[string]any{"success": true, "retrieved_chunks": chunks, "query": in.QueryText}, nil
			})
		if err != nil {
			return nil, err
		}
		tools = append(tools, queryKB)
	}
	return tools, nil
}

// NewAssistant assembles the health assistant agent. The calendar summary is
// embedded in the instructions so the agent can reference the user's
// schedule without extra tool calls.
func NewAssistant(ctx context.Context, provider nimbus.ModelProvider, service *Service, kb KnowledgeBase, middlewares ...nimbus.Middleware) (nimbus.Agent, error) {
	tools, err := Tools(service, kb)
	if err != nil {
		return nil, err
	}
	summary, err := service.Summary(ctx)
	if err != nil {
		return nil, err
	}
	calendarJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, err
	}
	instructions := fmt.Sprintf(assistantInstructions, service.Now().Format("January 2, 2006"))
	instructions = fmt.Sprintf("%s\n\nThe user's calendar:\n%s", instructions, calendarJSON)
	return nimbus.NewAgent("health-assistant",
		nimbus.WithModel(provider),
		nimbus.WithDescription("Health assistant that answers symptom questions and books appointments."),
		nimbus.WithInstructions(instructions),
		nimbus.WithTools(tools...),
		nimbus.WithMiddleware(middlewares...),
	)
}
