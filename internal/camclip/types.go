// Package camclip provides the keyframed camera clip format and an
// AnimationSource that samples it.
//
// Clip files are XML fragments without a root element, in the same shape as
// reanim files: a name, a frame rate, and tracks of <t> frames. Every frame
// field is optional; an omitted field inherits the previous frame's value
// (cumulative inheritance).
package camclip

// ClipXML is the root structure of a clip file.
type ClipXML struct {
	// Name is the display name of the clip
	Name string `xml:"name"`

	// FPS is the keyframe rate; frame i sits at i/FPS seconds
	FPS int `xml:"fps"`

	// Tracks holds the camera track and any auxiliary tracks
	Tracks []Track `xml:"track"`
}

// Track is a named sequence of frames, e.g. "camera".
type Track struct {
	Name   string  `xml:"name"`
	Frames []Frame `xml:"t"`
}

// Frame is a single keyframe. Nil fields inherit from the previous frame.
type Frame struct {
	// X, Y, Z is the camera position in world units
	X *float64 `xml:"x,omitempty"`
	Y *float64 `xml:"y,omitempty"`
	Z *float64 `xml:"z,omitempty"`

	// RX, RY, RZ is an XYZ Euler rotation in radians
	RX *float64 `xml:"rx,omitempty"`
	RY *float64 `xml:"ry,omitempty"`
	RZ *float64 `xml:"rz,omitempty"`

	// QX, QY, QZ, QW is a rotation quaternion. A track uses either Euler
	// fields or quaternion fields, never both.
	QX *float64 `xml:"qx,omitempty"`
	QY *float64 `xml:"qy,omitempty"`
	QZ *float64 `xml:"qz,omitempty"`
	QW *float64 `xml:"qw,omitempty"`

	// FOV is the vertical field of view in degrees
	FOV *float64 `xml:"fov,omitempty"`
}

func (f Frame) hasEuler() bool {
	return f.RX != nil || f.RY != nil || f.RZ != nil
}

func (f Frame) hasQuat() bool {
	return f.QX != nil || f.QY != nil || f.QZ != nil || f.QW != nil
}
