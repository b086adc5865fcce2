// Package services contains the harvest business logic: searching,
// fan-out fetching, dataset query resolution and field-value
// extraction. Services orchestrate calls to driven ports (adapters)
// and never touch the wire themselves.
package services
