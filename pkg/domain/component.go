package domain

import "fmt"

// Class names a concrete component variant. The value is what gets persisted
// in the componentClass attribute of a component record.
type Class string

const (
	ClassModuleRoot     Class = "ModuleRootComponent"
	ClassCharacterRoot  Class = "CharacterRootComponent"
	ClassBasicJoint     Class = "BasicJointComponent"
	ClassCurveControl   Class = "CurveControlComponent"
	ClassLocatorControl Class = "LocatorControlComponent"
)

// Component is a typed record attached to exactly one bit.
// The set of variants is closed: only types in this package implement it.
type Component interface {
	Class() Class
	isComponent()
}

// JointSpec describes the joint a component asks the build to produce.
type JointSpec struct {
	Name string
}

// ControlSpec describes the visual control a component asks the build to produce.
type ControlSpec struct {
	Name  string
	Shape string
	Size  float64
	Color int
}

// JointSource is implemented by components that produce a built joint.
type JointSource interface {
	Component
	Joint() JointSpec
}

// ControlSource is implemented by components that produce a built visual control.
type ControlSource interface {
	Component
	Control() ControlSpec
}

// ModuleRoot marks the root bit of a module.
type ModuleRoot struct {
	ModuleName    string `mapstructure:"moduleName" json:"moduleName" yaml:"moduleName"`
	BuildPriority int    `mapstructure:"buildPriority" json:"buildPriority" yaml:"buildPriority"`
}

// CharacterRoot marks the top bit of a character.
type CharacterRoot struct {
	CharacterName     string `mapstructure:"characterName" json:"characterName" yaml:"characterName"`
	SkeletonGroupName string `mapstructure:"skeletonGroupName" json:"skeletonGroupName" yaml:"skeletonGroupName"`
	RigGroupName      string `mapstructure:"rigGroupName" json:"rigGroupName" yaml:"rigGroupName"`
}

// BasicJoint asks for one joint at the bit's position.
type BasicJoint struct {
	JointName string `mapstructure:"jointName" json:"jointName" yaml:"jointName"`
}

// CurveControl asks for a curve-shaped control wrapped in a spacer.
type CurveControl struct {
	ControlName string  `mapstructure:"controlName" json:"controlName" yaml:"controlName"`
	CurveType   string  `mapstructure:"curveType" json:"curveType" yaml:"curveType"`
	Size        float64 `mapstructure:"size" json:"size" yaml:"size"`
	Color       int     `mapstructure:"color" json:"color" yaml:"color"`
}

// LocatorControl asks for a locator-shaped control wrapped in a spacer.
type LocatorControl struct {
	ControlName string  `mapstructure:"controlName" json:"controlName" yaml:"controlName"`
	Size        float64 `mapstructure:"size" json:"size" yaml:"size"`
}

func (ModuleRoot) Class() Class     { return ClassModuleRoot }
func (CharacterRoot) Class() Class  { return ClassCharacterRoot }
func (BasicJoint) Class() Class     { return ClassBasicJoint }
func (CurveControl) Class() Class   { return ClassCurveControl }
func (LocatorControl) Class() Class { return ClassLocatorControl }

func (ModuleRoot) isComponent()     {}
func (CharacterRoot) isComponent()  {}
func (BasicJoint) isComponent()     {}
func (CurveControl) isComponent()   {}
func (LocatorControl) isComponent() {}

// Joint implements JointSource.
func (c BasicJoint) Joint() JointSpec { return JointSpec{Name: c.JointName} }

// Control implements ControlSource.
func (c CurveControl) Control() ControlSpec {
	shape := c.CurveType
	if shape == "" {
		shape = "circle"
	}
	return ControlSpec{Name: c.ControlName, Shape: shape, Size: c.Size, Color: c.Color}
}

// Control implements ControlSource.
func (c LocatorControl) Control() ControlSpec {
	return ControlSpec{Name: c.ControlName, Shape: "locator", Size: c.Size}
}

// DecodeComponent builds the variant for class, filling its fields through decode.
// decode receives a pointer to the zero variant.
func DecodeComponent(class Class, decode func(out any) error) (Component, error) {
	var err error
	switch class {
	case ClassModuleRoot:
		var c ModuleRoot
		err = decode(&c)
		return c, err
	case ClassCharacterRoot:
		var c CharacterRoot
		err = decode(&c)
		return c, err
	case ClassBasicJoint:
		var c BasicJoint
		err = decode(&c)
		return c, err
	case ClassCurveControl:
		var c CurveControl
		err = decode(&c)
		return c, err
	case ClassLocatorControl:
		var c LocatorControl
		err = decode(&c)
		return c, err
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownClass, class)
}

// Matcher selects component classes during ancestor searches.
type Matcher func(Class) bool

// IsClass matches exactly one class.
func IsClass(class Class) Matcher {
	return func(c Class) bool { return c == class }
}

// BuildsJoint matches every class whose variant implements JointSource.
func BuildsJoint(c Class) bool {
	return c == ClassBasicJoint
}

// BuildsControl matches every class whose variant implements ControlSource.
func BuildsControl(c Class) bool {
	return c == ClassCurveControl || c == ClassLocatorControl
}
