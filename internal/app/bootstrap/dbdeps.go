// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/selecthub/internal/app/system/escalation"
)

// DBDeps holds database/back-end dependencies for the app.
// Extend this struct as your app evolves.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Scheduler runs round deadlines and emergency auto-escalations.
	// Timers are process-local; pending ones are re-armed from Mongo
	// when the handler is built.
	Scheduler *escalation.Scheduler
}
