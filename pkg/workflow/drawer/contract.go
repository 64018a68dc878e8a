package drawer

import (
	"time"

	"github.com/gantry-ci/gantry/pkg/workflow/model"
)

// Drawer is an interface that defines the methods for drawing a run graph.
type Drawer interface {
	// AddNode adds a job or step node to the graph.
	AddNode(name string) error
	// AddLink adds a link between parent and child nodes.
	AddLink(parentName, childName string) error
	// SetConclusion colors a node according to its conclusion.
	SetConclusion(name string, conclusion model.Conclusion) error
	// SetDuration annotates a node with its wall time.
	SetDuration(name string, elapsed time.Duration) error
	// Draw creates a file with the run graph.
	Draw() error
}
