package domain

import "errors"

// ErrReportNotFound is returned when a report ID cannot be found in the store.
var ErrReportNotFound = errors.New("report not found")

// ErrActorRegistered is returned when the same actor is registered twice with a provider.
var ErrActorRegistered = errors.New("actor already registered")

// ErrUnknownNodeType is returned when a scenario document names a node type with no factory.
var ErrUnknownNodeType = errors.New("unknown node type")
