// app/bootstrap.go
package app

import (
	"context"

	"workshop_tool_tracker/db"
	"workshop_tool_tracker/models"
	"workshop_tool_tracker/services"
)

type sampleTool struct {
	name, description string
}

var sampleTools = []sampleTool{
	{"Electric Drill", "Cordless electric drill with multiple bits"},
	{"Circular Saw", "7.25 inch circular saw for wood cutting"},
	{"Socket Set", "Complete socket wrench set with ratchet"},
	{"Angle Grinder", "4.5 inch angle grinder with cutting discs"},
	{"Digital Multimeter", "Digital multimeter for electrical testing"},
}

// SeedSampleTools adds the demo inventory. An inventory that already has
// tools is left alone unless force is set (which adds duplicates by name).
func SeedSampleTools(ctx context.Context, a *App, force bool) ([]models.Tool, error) {
	n, err := db.NewRepo(a.DB).CountTools(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 && !force {
		a.Log.Warn(a.Log.WithField(ctx, "existing", n), "seed.skipped")
		return nil, nil
	}

	created := make([]models.Tool, 0, len(sampleTools))
	for _, st := range sampleTools {
		desc := st.description
		tool, err := a.Services.Tools.Create(ctx, services.CreateToolInput{Name: st.name, Description: &desc})
		if err != nil {
			return created, err
		}
		created = append(created, *tool)
	}
	a.Log.Info(a.Log.WithField(ctx, "count", len(created)), "seed.completed")
	return created, nil
}
