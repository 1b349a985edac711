// handlers/handlers.go - Shared handler wiring
package handlers

import (
	"codebid/services"
)

var (
	store   services.Store
	auction *services.AuctionService
)

// Init wires the handlers to the persistence gateway and the auction service.
// Must be called before any route is registered.
func Init(st services.Store, svc *services.AuctionService) {
	store = st
	auction = svc
}
