// Package mock is used to generate mock files for testing.
package mock

//go:generate mockgen -source ../azuread/azuread_iface.go -destination mock_azuread/mock_azuread_iface.go
