package domain

// Order is the direction used to sort linked modules by build priority.
type Order string

const (
	Ascending  Order = "ascending"
	Descending Order = "descending"
)

// Artifact is a node produced by a build pipeline for one authoring bit.
type Artifact struct {
	Bit  BitID  `json:"bit"`
	Node BitID  `json:"node"`
	Name string `json:"name"`
	// Handle is what gets parented: the spacer for controls, the node itself for joints.
	Handle BitID `json:"handle"`
}

// ModuleReport summarises one module's build.
type ModuleReport struct {
	Module     string     `json:"module"`
	Root       BitID      `json:"root"`
	Priority   int        `json:"priority"`
	Joints     []Artifact `json:"joints,omitempty"`
	Controls   []Artifact `json:"controls,omitempty"`
	Created    int        `json:"created"`
	Reused     int        `json:"reused"`
	Reparented int        `json:"reparented"`
	Err        error      `json:"-"`
}

// BuildReport summarises a character build.
type BuildReport struct {
	Character     string         `json:"character"`
	SkeletonGroup BitID          `json:"skeleton_group"`
	RigGroup      BitID          `json:"rig_group"`
	Modules       []ModuleReport `json:"modules"`
}

// Reparented is the total number of parent changes across modules.
func (r *BuildReport) Reparented() int {
	n := 0
	for _, m := range r.Modules {
		n += m.Reparented
	}
	return n
}

// Created is the total number of nodes created across modules.
func (r *BuildReport) Created() int {
	n := 0
	for _, m := range r.Modules {
		n += m.Created
	}
	return n
}

// Failed lists the modules that did not build.
func (r *BuildReport) Failed() []ModuleReport {
	var out []ModuleReport
	for _, m := range r.Modules {
		if m.Err != nil {
			out = append(out, m)
		}
	}
	return out
}
