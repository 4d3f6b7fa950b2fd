package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tool-market/internal/models"
)

const (
	ToolsCollection   = "tools"
	OrdersCollection  = "orders"
	ReviewsCollection = "reviews"
	UsersCollection   = "users"
)

type MongoToolRepository struct {
	col *mongo.Collection
}

func NewMongoToolRepository(db *mongo.Database) *MongoToolRepository {
	return &MongoToolRepository{col: db.Collection(ToolsCollection)}
}

func (r *MongoToolRepository) List(ctx context.Context) ([]models.Tool, error) {
	tools := make([]models.Tool, 0)
	if err := findAll(ctx, r.col, bson.M{}, &tools); err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return tools, nil
}

func (r *MongoToolRepository) FindByID(ctx context.Context, id string) (*models.Tool, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var tool models.Tool
	if err := findOne(ctx, r.col, bson.M{"_id": oid}, &tool); err != nil {
		return nil, err
	}
	return &tool, nil
}

func (r *MongoToolRepository) Insert(ctx context.Context, tool *models.Tool) (*models.InsertResult, error) {
	tool.ID = primitive.NilObjectID
	res, err := r.col.InsertOne(ctx, tool)
	if err != nil {
		return nil, fmt.Errorf("insert tool: %w", err)
	}
	return insertResult(res, &tool.ID), nil
}

func (r *MongoToolRepository) Upsert(ctx context.Context, id string, tool *models.Tool) (*models.WriteResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	tool.ID = primitive.NilObjectID
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": tool}, options.Update().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("upsert tool %s: %w", id, err)
	}
	return writeResult(res), nil
}

type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection(OrdersCollection)}
}

func (r *MongoOrderRepository) Insert(ctx context.Context, order *models.Order) (*models.InsertResult, error) {
	order.ID = primitive.NilObjectID
	res, err := r.col.InsertOne(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return insertResult(res, &order.ID), nil
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var order models.Order
	if err := findOne(ctx, r.col, bson.M{"_id": oid}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrderRepository) ListByEmail(ctx context.Context, email string) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if err := findAll(ctx, r.col, bson.M{"email": email}, &orders); err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", email, err)
	}
	return orders, nil
}

func (r *MongoOrderRepository) List(ctx context.Context) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if err := findAll(ctx, r.col, bson.M{}, &orders); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// MarkPaid flips an unpaid order to paid in a single conditional update.
// ErrNotFound means no unpaid order with that id exists.
func (r *MongoOrderRepository) MarkPaid(ctx context.Context, id, transactionID string) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid, "paid": bson.M{"$ne": true}}
	update := bson.M{"$set": bson.M{"paid": true, "transactionId": transactionID}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mark order %s paid: %w", id, err)
	}
	return &order, nil
}

func (r *MongoOrderRepository) DeleteByEmail(ctx context.Context, email string) (*models.DeleteResult, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("delete orders for %s: %w", email, err)
	}
	return &models.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

type MongoReviewRepository struct {
	col *mongo.Collection
}

func NewMongoReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{col: db.Collection(ReviewsCollection)}
}

func (r *MongoReviewRepository) Insert(ctx context.Context, review *models.Review) (*models.InsertResult, error) {
	review.ID = primitive.NilObjectID
	res, err := r.col.InsertOne(ctx, review)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return insertResult(res, &review.ID), nil
}

func (r *MongoReviewRepository) List(ctx context.Context) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	if err := findAll(ctx, r.col, bson.M{}, &reviews); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

type MongoUserRepository struct {
	col *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{col: db.Collection(UsersCollection)}
}

func (r *MongoUserRepository) List(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := findAll(ctx, r.col, bson.M{}, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := findOne(ctx, r.col, bson.M{"email": email}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) UpsertByEmail(ctx context.Context, email string, profile *models.UserProfile) (*models.WriteResult, error) {
	set, err := toDocument(profile)
	if err != nil {
		return nil, err
	}
	set["email"] = email

	res, err := r.col.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set}, options.Update().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", email, err)
	}
	return writeResult(res), nil
}

func (r *MongoUserRepository) SetRole(ctx context.Context, email string, role models.Role) (*models.WriteResult, error) {
	res, err := r.col.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"role": role.String()}})
	if err != nil {
		return nil, fmt.Errorf("set role for %s: %w", email, err)
	}
	return writeResult(res), nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

func findOne(ctx context.Context, col *mongo.Collection, filter any, out any) error {
	err := col.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find one in %s: %w", col.Name(), err)
	}
	return nil
}

func findAll(ctx context.Context, col *mongo.Collection, filter any, out any) error {
	cur, err := col.Find(ctx, filter)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func toDocument(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}

func insertResult(res *mongo.InsertOneResult, id *primitive.ObjectID) *models.InsertResult {
	out := &models.InsertResult{Acknowledged: true}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		*id = oid
		out.InsertedID = oid.Hex()
	}
	return out
}

func writeResult(res *mongo.UpdateResult) *models.WriteResult {
	out := &models.WriteResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		hex := oid.Hex()
		out.UpsertedID = &hex
	}
	return out
}
