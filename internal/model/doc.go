// Package model builds and edits small multibody demo models: ordered
// collections of bodies, joints, actuators, markers, and offset frames
// composed through attachment frames.
//
// Factories construct the stock models ([NLinkPendulum], [PlanarPointMass],
// [Brachistochrone]); [ReplaceJointWithWeld] and [CreateReserveActuators]
// edit an existing model in place. A joint can only attach to ground or to
// a body already in the model; [Model.AddJoint] rejects anything else.
package model
