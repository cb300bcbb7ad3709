package repository

import (
	"testing"
	"time"

	"vaxbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildDateFilter(t *testing.T) {
	start := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	filter := buildDateFilter(start, end, nil)
	if _, ok := filter["dose_type"]; ok {
		t.Error("dose_type should be absent when no dose is requested")
	}
	rng, ok := filter["date"].(bson.M)
	if !ok {
		t.Fatalf("expected date range, got %T", filter["date"])
	}
	if rng["$gte"] != start || rng["$lt"] != end {
		t.Errorf("unexpected range %v", rng)
	}

	dose := model.DoseSecond
	filter = buildDateFilter(start, end, &dose)
	if filter["dose_type"] != model.DoseSecond {
		t.Errorf("expected dose_type second, got %v", filter["dose_type"])
	}
}

func TestBuildRegistrationFilter(t *testing.T) {
	oid := primitive.NewObjectID()
	filter := buildRegistrationFilter(oid, "65f1a2b3c4d5e6f708192a3b")

	if filter["_id"] != oid {
		t.Errorf("expected _id %v, got %v", oid, filter["_id"])
	}
	ne, ok := filter["registered_users"].(bson.M)
	if !ok || ne["$ne"] != "65f1a2b3c4d5e6f708192a3b" {
		t.Errorf("expected $ne guard on registered_users, got %v", filter["registered_users"])
	}
	expr, ok := filter["$expr"].(bson.M)
	if !ok {
		t.Fatalf("expected $expr capacity guard, got %v", filter["$expr"])
	}
	if _, ok := expr["$lt"]; !ok {
		t.Errorf("capacity guard should compare with $lt, got %v", expr)
	}
}
