package prepstage

import (
	"strings"
)

// Stage identifies how far a notified unit has progressed in the kitchen.
type Stage struct {
	Name string
}

func (s Stage) Code() string {
	return s.Name
}

func (s Stage) Label() string {
	parts := strings.Split(s.Name, "-")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

type Enum struct {
	Notified  Stage
	Preparing Stage
	Ready     Stage
	Served    Stage
	Voided    Stage
}

var Stages = Enum{
	Notified:  Stage{Name: "notified"},
	Preparing: Stage{Name: "preparing"},
	Ready:     Stage{Name: "ready"},
	Served:    Stage{Name: "served"},
	Voided:    Stage{Name: "voided"},
}

var All = []Stage{
	Stages.Notified,
	Stages.Preparing,
	Stages.Ready,
	Stages.Served,
	Stages.Voided,
}

// ByName returns the stage for a given name, or nil if not found
func ByName(name string) *Stage {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}
