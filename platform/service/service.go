// Package service provides the lifecycle contract shared by all stores.
package service

// Lifecycle controls the setup and teardown of namespaced storage.
type Lifecycle interface {
	Setup(namespace string) error
	Teardown(namespace string) error
}
