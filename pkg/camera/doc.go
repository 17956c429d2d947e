// Package camera frames a 3D point set and animates a perspective camera.
//
// A [Pose] is a target point and an eye position. [FrameAll] fits every
// point into view from a fixed oblique direction; [FrameEntity] moves in on a
// single point. A [Rig] holds the live pose and at most one [Transition];
// starting a new transition preempts the old one from wherever the camera is
// at that moment.
//
// [Lens] turns screen coordinates into world rays and back, which is all that
// picking needs from a camera.
package camera
