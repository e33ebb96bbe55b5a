package handlers

import (
	"github.com/Swagman-cyber/hell/database"
	"github.com/Swagman-cyber/hell/verify"
)

var (
	flow  *verify.Flow
	store *database.Store
)

// Init - Wire shared dependencies before the router starts dispatching
func Init(f *verify.Flow, s *database.Store) {
	flow = f
	store = s
}
