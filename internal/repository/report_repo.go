package repository

import (
	"context"

	"grievanceportal/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReportRepo handles MongoDB operations for exported report metadata
type ReportRepo interface {
	Create(ctx context.Context, report *model.ReportExport) error
	ListByUser(ctx context.Context, userID string, kind model.ReportKind) ([]*model.ReportExport, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}

type reportRepo struct {
	exports *mongo.Collection
}

// NewReportRepo creates a new report repository
func NewReportRepo(db *mongo.Database) ReportRepo {
	return &reportRepo{
		exports: db.Collection("report_exports"),
	}
}

func (r *reportRepo) Create(ctx context.Context, report *model.ReportExport) error {
	if report.ID == "" {
		report.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.exports.InsertOne(ctx, report)
	return err
}

// ListByUser returns the user's exports, newest first. An empty kind lists all kinds.
func (r *reportRepo) ListByUser(ctx context.Context, userID string, kind model.ReportKind) ([]*model.ReportExport, error) {
	filter := bson.M{"userId": userID}
	if kind != "" {
		filter["kind"] = kind
	}

	opts := options.Find().SetSort(bson.D{{Key: "exportedAt", Value: -1}})
	cursor, err := r.exports.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reports := []*model.ReportExport{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// Delete removes an export owned by userID and reports whether one matched
func (r *reportRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.exports.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
