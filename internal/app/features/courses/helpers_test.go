package courses_test

import (
	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	"go.mongodb.org/mongo-driver/mongo"
)

func testStore(db *mongo.Database) *coursestore.Store {
	return coursestore.New(db)
}
