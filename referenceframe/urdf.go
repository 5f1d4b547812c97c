package referenceframe

import (
	"encoding/xml"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/kinstate/spatialmath"
)

// URDF joint type spellings.
const (
	urdfRevolute   = "revolute"
	urdfContinuous = "continuous"
	urdfPrismatic  = "prismatic"
	urdfFixed      = "fixed"
	urdfFloating   = "floating"
	urdfPlanar     = "planar"
)

// URDFConfig represents all supported fields in a Universal Robot Description Format (URDF) file.
type URDFConfig struct {
	XMLName xml.Name    `xml:"robot"`
	Name    string      `xml:"name,attr"`
	Links   []URDFLink  `xml:"link"`
	Joints  []URDFJoint `xml:"joint"`
}

// URDFLink is a struct which details the XML used in a URDF link element.
type URDFLink struct {
	XMLName  xml.Name      `xml:"link"`
	Name     string        `xml:"name,attr"`
	Inertial *URDFInertial `xml:"inertial,omitempty"`
}

// URDFInertial is the inertial element of a link.
type URDFInertial struct {
	Origin  *URDFPose `xml:"origin,omitempty"`
	Mass    URDFValue `xml:"mass"`
	Inertia struct {
		IXX float64 `xml:"ixx,attr"`
		IXY float64 `xml:"ixy,attr"`
		IXZ float64 `xml:"ixz,attr"`
		IYY float64 `xml:"iyy,attr"`
		IYZ float64 `xml:"iyz,attr"`
		IZZ float64 `xml:"izz,attr"`
	} `xml:"inertia"`
}

// URDFValue is an element carrying a single value attribute.
type URDFValue struct {
	Value float64 `xml:"value,attr"`
}

// URDFPose is an origin element, a translation and roll-pitch-yaw rotation.
type URDFPose struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"`
}

// URDFAxis is the axis element of a joint.
type URDFAxis struct {
	XYZ string `xml:"xyz,attr"`
}

// URDFLimit is the limit element of a joint.
type URDFLimit struct {
	XMLName xml.Name `xml:"limit"`
	Lower   float64  `xml:"lower,attr"` // translation limits are in meters, revolute limits are in radians
	Upper   float64  `xml:"upper,attr"` // translation limits are in meters, revolute limits are in radians
}

// URDFFrame names the link on one side of a joint.
type URDFFrame struct {
	Link string `xml:"link,attr"`
}

// URDFJoint is a struct which details the XML used in a URDF joint element.
type URDFJoint struct {
	XMLName xml.Name   `xml:"joint"`
	Name    string     `xml:"name,attr"`
	Type    string     `xml:"type,attr"`
	Parent  URDFFrame  `xml:"parent"`
	Child   URDFFrame  `xml:"child"`
	Origin  *URDFPose  `xml:"origin,omitempty"`
	Axis    *URDFAxis  `xml:"axis,omitempty"`
	Limit   *URDFLimit `xml:"limit,omitempty"`
}

// ParseURDFFile will read a given file and parse the contained URDF XML data into a Tree.
func ParseURDFFile(filename string) (*Tree, error) {
	//nolint:gosec
	xmlData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read URDF file")
	}
	return ParseURDF(xmlData)
}

// ParseURDF converts URDF XML data into a Tree rooted at the only link that is never a joint child.
// Joint origins and inertial parameters keep URDF units (metres, radians, kilograms).
func ParseURDF(xmlData []byte) (*Tree, error) {
	// empty data probably means that the read URDF has no actionable information
	if len(xmlData) == 0 {
		return nil, ErrNoModelInformation
	}

	urdf := &URDFConfig{}
	if err := xml.Unmarshal(xmlData, urdf); err != nil {
		return nil, errors.Wrap(err, "failed to convert URDF data to equivalent URDFConfig struct")
	}
	if len(urdf.Links) == 0 {
		return nil, ErrNoModelInformation
	}

	links := map[string]URDFLink{}
	for _, link := range urdf.Links {
		links[link.Name] = link
	}

	childJoint := map[string]URDFJoint{}
	children := map[string][]URDFJoint{}
	var parseErrs error
	for _, joint := range urdf.Joints {
		if _, ok := links[joint.Child.Link]; !ok {
			parseErrs = multierr.Append(parseErrs, errors.Errorf("joint %q references unknown child link %q", joint.Name, joint.Child.Link))
			continue
		}
		if _, ok := links[joint.Parent.Link]; !ok {
			parseErrs = multierr.Append(parseErrs, errors.Errorf("joint %q references unknown parent link %q", joint.Name, joint.Parent.Link))
			continue
		}
		if other, ok := childJoint[joint.Child.Link]; ok {
			parseErrs = multierr.Append(parseErrs,
				errors.Errorf("link %q is the child of both joint %q and joint %q", joint.Child.Link, other.Name, joint.Name))
			continue
		}
		childJoint[joint.Child.Link] = joint
		children[joint.Parent.Link] = append(children[joint.Parent.Link], joint)
	}
	if parseErrs != nil {
		return nil, parseErrs
	}

	var roots []string
	for _, link := range urdf.Links {
		if _, ok := childJoint[link.Name]; !ok {
			roots = append(roots, link.Name)
		}
	}
	if len(roots) != 1 {
		return nil, errors.Errorf("URDF must have exactly one root link, found %d: %v", len(roots), roots)
	}

	tree := NewTree(roots[0])
	// Breadth first from the root so every parent is in the tree before its children.
	queue := []string{roots[0]}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, joint := range children[parent] {
			seg, err := joint.segment(links[joint.Child.Link])
			if err != nil {
				parseErrs = multierr.Append(parseErrs, err)
				continue
			}
			if err := tree.AddSegment(parent, seg); err != nil {
				parseErrs = multierr.Append(parseErrs, err)
				continue
			}
			queue = append(queue, joint.Child.Link)
		}
	}
	if parseErrs != nil {
		return nil, parseErrs
	}
	return tree, nil
}

func (joint URDFJoint) segment(child URDFLink) (Segment, error) {
	origin, err := joint.Origin.Parse()
	if err != nil {
		return Segment{}, errors.Wrapf(err, "joint %q origin", joint.Name)
	}
	inertia, err := child.Inertial.Parse()
	if err != nil {
		return Segment{}, errors.Wrapf(err, "link %q inertial", child.Name)
	}

	axis := r3.Vector{X: 1}
	if joint.Axis != nil {
		xyz, err := parseVector(joint.Axis.XYZ)
		if err != nil {
			return Segment{}, errors.Wrapf(err, "joint %q axis", joint.Name)
		}
		axis = xyz
	}
	limit := UnboundedLimit()
	if joint.Limit != nil {
		limit = Limit{Min: joint.Limit.Lower, Max: joint.Limit.Upper}
	}

	var j Joint
	switch joint.Type {
	case urdfRevolute:
		j, err = NewRevoluteJoint(joint.Name, axis, limit)
	case urdfContinuous:
		j, err = NewRevoluteJoint(joint.Name, axis, UnboundedLimit())
	case urdfPrismatic:
		j, err = NewPrismaticJoint(joint.Name, axis, limit)
	case urdfFixed:
		j = NewFixedJoint(joint.Name)
	case urdfFloating, urdfPlanar:
		// Multi dof joints are kept for geometry only.
		j = Joint{Name: joint.Name, Type: UnknownJoint}
	default:
		return Segment{}, NewUnsupportedJointTypeError(joint.Type)
	}
	if err != nil {
		return Segment{}, err
	}
	return Segment{Name: child.Name, Joint: j, Origin: origin, Inertia: inertia}, nil
}

// Parse converts the origin into a pose. A missing origin is the identity.
func (p *URDFPose) Parse() (spatialmath.Pose, error) {
	if p == nil {
		return spatialmath.NewZeroPose(), nil
	}
	xyz, err := parseVector(p.XYZ)
	if err != nil {
		return nil, err
	}
	rpy, err := parseVector(p.RPY)
	if err != nil {
		return nil, err
	}
	return spatialmath.NewPose(xyz, &spatialmath.EulerAngles{Roll: rpy.X, Pitch: rpy.Y, Yaw: rpy.Z}), nil
}

// Parse converts the inertial element into an Inertia in the link frame. The URDF tensor is given
// in the inertial origin frame, so it is rotated by the origin rpy.
func (in *URDFInertial) Parse() (Inertia, error) {
	if in == nil {
		return Inertia{}, nil
	}
	if in.Mass.Value < 0 || math.IsNaN(in.Mass.Value) {
		return Inertia{}, errors.Errorf("invalid mass %f", in.Mass.Value)
	}
	origin, err := in.Origin.Parse()
	if err != nil {
		return Inertia{}, err
	}
	moment := RotationalInertia{
		XX: in.Inertia.IXX, XY: in.Inertia.IXY, XZ: in.Inertia.IXZ,
		YY: in.Inertia.IYY, YZ: in.Inertia.IYZ, ZZ: in.Inertia.IZZ,
	}
	rotated := Inertia{Mass: in.Mass.Value, Moment: moment}.Rotate(origin.Orientation())
	rotated.CenterOfMass = origin.Point()
	return rotated, nil
}

// parseVector reads a space delimited triple such as an xyz or rpy attribute. An empty string is
// the zero vector.
func parseVector(s string) (r3.Vector, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return r3.Vector{}, nil
	}
	if len(fields) != 3 {
		return r3.Vector{}, errors.Errorf("expected 3 values, got %q", s)
	}
	var vals [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return r3.Vector{}, errors.Wrapf(err, "parsing %q", s)
		}
		vals[i] = v
	}
	return r3.Vector{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}
