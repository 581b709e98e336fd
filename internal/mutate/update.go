package mutate

import (
	"strings"
	"time"

	"jobtrack/internal/model"
)

type UpdateResult struct {
	Application  model.Application
	Changed      bool
	EventPayload map[string]any
}

// UpdateApplication applies patch to app on behalf of userID. Applications owned by
// someone else are reported as not found. Callers persist Application when Changed.
func UpdateApplication(app *model.Application, userID string, patch model.Patch, now time.Time) (UpdateResult, error) {
	userID = strings.TrimSpace(userID)
	if app == nil || app.DeletedOn != nil {
		return UpdateResult{}, NotFoundError{Kind: "application", ID: ""}
	}
	if userID == "" || app.UserID != userID {
		return UpdateResult{}, NotFoundError{Kind: "application", ID: app.ID}
	}
	if patch == nil {
		return UpdateResult{Application: *app}, nil
	}

	merged, err := ApplyPatch(*app, patch)
	if err != nil {
		return UpdateResult{}, err
	}
	if sameFields(merged, *app) {
		return UpdateResult{Application: *app, Changed: false}, nil
	}
	merged.UpdatedOn = now.UTC()

	payload := map[string]any{"id": merged.ID}
	if _, ok := patch.(model.MovePatch); ok {
		payload["kind"] = "move"
		payload["from"] = string(app.Status)
		payload["to"] = string(merged.Status)
		payload["sortIndex"] = merged.SortIndex
	} else {
		payload["kind"] = "fields"
		if merged.Status != app.Status {
			payload["from"] = string(app.Status)
			payload["to"] = string(merged.Status)
		}
	}
	return UpdateResult{Application: merged, Changed: true, EventPayload: payload}, nil
}

func sameFields(a, b model.Application) bool {
	return a.Company == b.Company &&
		a.Position == b.Position &&
		a.SalaryMin == b.SalaryMin &&
		a.SalaryMax == b.SalaryMax &&
		a.Status == b.Status &&
		a.Notes == b.Notes &&
		a.SortIndex == b.SortIndex
}
