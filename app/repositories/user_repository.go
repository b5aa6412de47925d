package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/pkg/metrics"
)

// allowedFields is the fixed set selectable through the list-users
// projection. Password is deliberately absent and can never be selected.
var allowedFields = map[string]bool{
	"username": true,
	"fullName": true,
	"age":      true,
	"email":    true,
	"address":  true,
}

func allowedFieldNames() []string {
	names := make([]string, 0, len(allowedFields))
	for f := range allowedFields {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// DefaultListFields is the projection applied when the caller requests
// no explicit field subset.
func DefaultListFields() []string {
	return allowedFieldNames()
}

// ValidateProjection checks every requested field against the allowed
// set. Exposed so fakes in tests apply the same policy.
func ValidateProjection(fields []string) error {
	for _, f := range fields {
		if !allowedFields[f] {
			return &InvalidFieldError{Field: f}
		}
	}
	return nil
}

// projectUser builds the wire document for one list entry. Only the
// selected keys appear; a zero value in the output always means the
// stored value, never "not selected".
func projectUser(u models.User, fields []string) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		switch f {
		case "username":
			out["username"] = u.Username
		case "fullName":
			out["fullName"] = u.FullName
		case "age":
			out["age"] = u.Age
		case "email":
			out["email"] = u.Email
		case "address":
			out["address"] = u.Address
		}
	}
	return out
}

// UserRepository is the persistence adapter for User documents. It holds
// an explicit collection handle; nothing in this package touches global
// state.
type UserRepository struct {
	col *mongo.Collection
}

// NewUserRepository builds a repository over the users collection of db.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

// EnsureIndexes creates the unique indexes backing the identity
// invariants. Call once at startup.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("users: ensure indexes: %w", err)
	}
	return nil
}

// Create inserts a new user document. The identity fields are checked
// first so the conflicting field can be named; the unique indexes still
// back the invariant if two creates race.
func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	defer metrics.ObserveMongoOp("insert", time.Now())

	if err := r.checkConflicts(ctx, user, nil); err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Orders == nil {
		user.Orders = []models.Order{}
	}

	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, &ConflictError{Field: duplicateField(err)}
		}
		return models.User{}, fmt.Errorf("users: insert: %w", err)
	}

	return user, nil
}

// All returns every user projected to the requested field subset.
// Requesting a field outside the allowed set fails with
// InvalidFieldError; no projection means the default subset. Entries
// are maps holding only the selected keys, so an unselected field is
// absent from the wire rather than zero-filled.
func (r *UserRepository) All(ctx context.Context, fields []string) ([]map[string]interface{}, error) {
	defer metrics.ObserveMongoOp("find", time.Now())

	if len(fields) == 0 {
		fields = DefaultListFields()
	}
	if err := ValidateProjection(fields); err != nil {
		return nil, err
	}

	projection := bson.M{"_id": 0}
	for _, f := range fields {
		projection[f] = 1
	}

	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().SetProjection(projection).SetSort(bson.D{{Key: "userId", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("users: find: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("users: decode: %w", err)
	}

	out := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		out = append(out, projectUser(u, fields))
	}
	return out, nil
}

// FindByID returns one user without the password hash.
func (r *UserRepository) FindByID(ctx context.Context, userID int) (models.User, error) {
	defer metrics.ObserveMongoOp("find", time.Now())

	var user models.User
	err := r.col.FindOne(ctx, bson.M{"userId": userID},
		options.FindOne().SetProjection(bson.M{"_id": 0, "password": 0})).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("users: find one: %w", err)
	}
	return user, nil
}

// Update replaces the mutable fields of the user currently stored under
// userID. The payload may re-key the user; uniqueness is re-checked
// against every other document first.
func (r *UserRepository) Update(ctx context.Context, userID int, user models.User) (models.User, error) {
	defer metrics.ObserveMongoOp("update", time.Now())

	if err := r.checkConflicts(ctx, user, &userID); err != nil {
		return models.User{}, err
	}

	user.UpdatedAt = time.Now().UTC()

	set := bson.M{
		"userId":    user.UserID,
		"username":  user.Username,
		"password":  user.Password,
		"fullName":  user.FullName,
		"age":       user.Age,
		"email":     user.Email,
		"isActive":  user.IsActive,
		"hobbies":   user.Hobbies,
		"address":   user.Address,
		"updatedAt": user.UpdatedAt,
	}
	if user.Orders != nil {
		set["orders"] = user.Orders
	}

	var updated models.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"_id": 0, "password": 0}),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, &ConflictError{Field: duplicateField(err)}
		}
		return models.User{}, fmt.Errorf("users: update: %w", err)
	}
	return updated, nil
}

// Delete removes the user document and, with it, the embedded orders.
func (r *UserRepository) Delete(ctx context.Context, userID int) error {
	defer metrics.ObserveMongoOp("delete", time.Now())

	res, err := r.col.DeleteOne(ctx, bson.M{"userId": userID})
	if err != nil {
		return fmt.Errorf("users: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendOrder pushes an order onto the user's list, preserving
// insertion order.
func (r *UserRepository) AppendOrder(ctx context.Context, userID int, order models.Order) error {
	defer metrics.ObserveMongoOp("update", time.Now())

	res, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$push": bson.M{"orders": order},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("users: append order: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Orders returns the user's order list in insertion order.
func (r *UserRepository) Orders(ctx context.Context, userID int) ([]models.Order, error) {
	defer metrics.ObserveMongoOp("find", time.Now())

	var doc struct {
		Orders []models.Order `bson:"orders"`
	}
	err := r.col.FindOne(ctx, bson.M{"userId": userID},
		options.FindOne().SetProjection(bson.M{"_id": 0, "orders": 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: orders: %w", err)
	}
	if doc.Orders == nil {
		doc.Orders = []models.Order{}
	}
	return doc.Orders, nil
}

// TotalPrice computes sum(price*quantity) across the user's orders with
// a single aggregation round trip. An empty result means the user is
// absent or has no orders; both surface as ErrNotFound.
func (r *UserRepository) TotalPrice(ctx context.Context, userID int) (float64, error) {
	defer metrics.ObserveMongoOp("aggregate", time.Now())

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$unwind", Value: "$orders"}},
		{{Key: "$group", Value: bson.M{
			"_id": "$userId",
			"totalPrice": bson.M{
				"$sum": bson.M{"$multiply": bson.A{"$orders.price", "$orders.quantity"}},
			},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("users: aggregate total: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		TotalPrice float64 `bson:"totalPrice"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("users: decode total: %w", err)
	}
	if len(rows) == 0 {
		return 0, ErrNotFound
	}
	return rows[0].TotalPrice, nil
}

// duplicateField names the identity field behind a duplicate-key error
// from a racing write. The server embeds the violated index name in the
// message ("index: email_1 dup key"); fall back to userId when the
// message carries no recognizable index.
func duplicateField(err error) string {
	msg := err.Error()
	for _, f := range []string{"username", "email", "userId"} {
		if strings.Contains(msg, "index: "+f+"_1") {
			return f
		}
	}
	return "userId"
}

// checkConflicts names the identity field that would collide. A non-nil
// excludeID skips the document currently stored under that userId, so
// an update keeping its own identity fields never conflicts with
// itself. Create passes nil: every document counts.
func (r *UserRepository) checkConflicts(ctx context.Context, user models.User, excludeID *int) error {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"userId": user.UserID},
			bson.M{"username": user.Username},
			bson.M{"email": user.Email},
		},
	}
	if excludeID != nil {
		filter = bson.M{
			"$and": bson.A{bson.M{"userId": bson.M{"$ne": *excludeID}}, filter},
		}
	}

	var existing models.User
	err := r.col.FindOne(ctx, filter,
		options.FindOne().SetProjection(bson.M{"userId": 1, "username": 1, "email": 1})).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("users: conflict check: %w", err)
	}

	switch {
	case existing.UserID == user.UserID:
		return &ConflictError{Field: "userId"}
	case existing.Username == user.Username:
		return &ConflictError{Field: "username"}
	default:
		return &ConflictError{Field: "email"}
	}
}
