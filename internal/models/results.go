package models

// Write results mirror the acknowledgements a document store returns and are sent to clients as is.

type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool    `json:"acknowledged"`
	ModifiedCount int64   `json:"modifiedCount"`
	UpsertedID    *string `json:"upsertedId"`
	UpsertedCount int64   `json:"upsertedCount"`
	MatchedCount  int64   `json:"matchedCount"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
