package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"koshoku_server/models"
	"koshoku_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const roomWriteAttempts = 3

// DynamoStore implements Store on DynamoDB. Optimistic concurrency comes
// from condition expressions: a write whose condition no longer holds is
// rejected by DynamoDB and surfaces here as ErrConflict.
type DynamoStore struct {
	Dynamo *DynamoService
}

var _ Store = (*DynamoStore)(nil)

// NewDynamoStore creates a Store backed by the given DynamoDB wrapper.
func NewDynamoStore(dynamo *DynamoService) *DynamoStore {
	return &DynamoStore{Dynamo: dynamo}
}

func userKey(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
}

func roomKey(roomID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"roomId": &types.AttributeValueMemberS{Value: roomID},
	}
}

// isConditionalFailure reports whether err is a rejected condition, either
// on a single write or anywhere inside a cancelled transaction.
func isConditionalFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var tc *types.TransactionCanceledException
	if errors.As(err, &tc) {
		for _, reason := range tc.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}

// --- Waiting pool ---

func (s *DynamoStore) PutEntry(ctx context.Context, entry models.WaitingEntry) error {
	return s.Dynamo.PutItem(ctx, models.WaitingPoolTable, entry)
}

func (s *DynamoStore) GetEntry(ctx context.Context, userID string) (*models.WaitingEntry, error) {
	item, err := s.Dynamo.GetItem(ctx, models.WaitingPoolTable, userKey(userID))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	var entry models.WaitingEntry
	if err := attributevalue.UnmarshalMap(item, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal waiting entry: %w", err)
	}
	return &entry, nil
}

func (s *DynamoStore) DeleteWaitingEntry(ctx context.Context, userID string) error {
	err := s.Dynamo.DeleteItemWithCondition(ctx, models.WaitingPoolTable, userKey(userID),
		"#s = :waiting",
		map[string]types.AttributeValue{
			":waiting": &types.AttributeValueMemberS{Value: models.StatusWaiting},
		},
		map[string]string{"#s": "status"},
	)
	if isConditionalFailure(err) {
		return ErrConflict
	}
	return err
}

func (s *DynamoStore) FindWaiting(ctx context.Context, category, excludeUserID string) (*models.WaitingEntry, error) {
	filter := "#s = :waiting AND userId <> :me"
	values := map[string]types.AttributeValue{
		":waiting": &types.AttributeValueMemberS{Value: models.StatusWaiting},
		":me":      &types.AttributeValueMemberS{Value: excludeUserID},
	}
	names := map[string]string{"#s": "status"}
	if category != "" {
		filter += " AND #cat = :cat"
		values[":cat"] = &types.AttributeValueMemberS{Value: category}
		names["#cat"] = "category"
	}

	var entries []models.WaitingEntry
	if err := s.Dynamo.ScanWithFilterExpression(ctx, models.WaitingPoolTable, filter, values, names, &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	// Oldest first, user id as the final tie-break, so candidate selection
	// is deterministic for a given pool state.
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].UserID < entries[j].UserID
	})
	return &entries[0], nil
}

func (s *DynamoStore) ListStaleWaiting(ctx context.Context, cutoff time.Time) ([]models.WaitingEntry, error) {
	var entries []models.WaitingEntry
	err := s.Dynamo.ScanWithFilterExpression(ctx, models.WaitingPoolTable,
		"#s = :waiting AND createdAt < :cutoff",
		map[string]types.AttributeValue{
			":waiting": &types.AttributeValueMemberS{Value: models.StatusWaiting},
			":cutoff":  &types.AttributeValueMemberN{Value: strconv.FormatInt(cutoff.Unix(), 10)},
		},
		map[string]string{"#s": "status"},
		&entries,
	)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *DynamoStore) MarkTimedOut(ctx context.Context, userIDs []string) (int, error) {
	// One conditional update per entry: only a still-waiting entry flips, so
	// a partially failed batch never corrupts anything and a re-run is a
	// no-op for entries already timed out.
	marked := 0
	var firstErr error
	for _, userID := range userIDs {
		_, err := s.Dynamo.UpdateItemWithCondition(ctx, models.WaitingPoolTable, userKey(userID),
			"SET #s = :timedOut",
			"#s = :waiting",
			map[string]types.AttributeValue{
				":timedOut": &types.AttributeValueMemberS{Value: models.StatusTimedOut},
				":waiting":  &types.AttributeValueMemberS{Value: models.StatusWaiting},
			},
			map[string]string{"#s": "status"},
		)
		if err == nil {
			marked++
			continue
		}
		if isConditionalFailure(err) {
			continue // entry moved on since the scan, nothing to do
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return marked, firstErr
}

func (s *DynamoStore) ResetEntry(ctx context.Context, userID, matchID string) error {
	_, err := s.Dynamo.UpdateItemWithCondition(ctx, models.WaitingPoolTable, userKey(userID),
		"SET #s = :waiting REMOVE matchId",
		"attribute_exists(userId) AND (attribute_not_exists(matchId) OR matchId = :matchId)",
		map[string]types.AttributeValue{
			":waiting": &types.AttributeValueMemberS{Value: models.StatusWaiting},
			":matchId": &types.AttributeValueMemberS{Value: matchID},
		},
		map[string]string{"#s": "status"},
	)
	if isConditionalFailure(err) {
		return nil // entry deleted, or paired into a different match meanwhile
	}
	return err
}

// --- Matches ---

func (s *DynamoStore) CommitMatch(ctx context.Context, match models.Match) error {
	if len(match.Participants) != 2 {
		return fmt.Errorf("match %s must have exactly two participants", match.MatchID)
	}

	matchItem, err := attributevalue.MarshalMap(match)
	if err != nil {
		return fmt.Errorf("failed to marshal match: %w", err)
	}

	stillWaiting := "#s = :waiting"
	names := map[string]string{"#s": "status"}
	values := map[string]types.AttributeValue{
		":waiting": &types.AttributeValueMemberS{Value: models.StatusWaiting},
		":matched": &types.AttributeValueMemberS{Value: models.StatusMatched},
		":matchId": &types.AttributeValueMemberS{Value: match.MatchID},
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(models.MatchesTable),
				Item:                matchItem,
				ConditionExpression: aws.String("attribute_not_exists(matchId)"),
			},
		},
	}
	for _, userID := range match.Participants {
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:                 aws.String(models.WaitingPoolTable),
				Key:                       userKey(userID),
				UpdateExpression:          aws.String("SET #s = :matched, matchId = :matchId"),
				ConditionExpression:       aws.String(stillWaiting),
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: values,
			},
		})
	}
	if match.IsMiracleMatch {
		for _, userID := range match.Participants {
			items = append(items, types.TransactWriteItem{
				Update: &types.Update{
					TableName:        aws.String(models.UserProfilesTable),
					Key:              userKey(userID),
					UpdateExpression: aws.String("ADD miracleMatchPoints :one"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":one": &types.AttributeValueMemberN{Value: "1"},
					},
				},
			})
		}
	}

	if err := s.Dynamo.TransactWriteItems(ctx, items); err != nil {
		if isConditionalFailure(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *DynamoStore) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	item, err := s.Dynamo.GetItem(ctx, models.MatchesTable, map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}
	return &match, nil
}

// --- Rooms ---

func (s *DynamoStore) CreateRoom(ctx context.Context, room models.Room) error {
	err := s.Dynamo.PutItemWithCondition(ctx, models.RoomsTable, room, "attribute_not_exists(roomId)")
	if isConditionalFailure(err) {
		return ErrConflict
	}
	return err
}

func (s *DynamoStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	item, err := s.Dynamo.GetItem(ctx, models.RoomsTable, roomKey(roomID))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	var room models.Room
	if err := attributevalue.UnmarshalMap(item, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}
	return &room, nil
}

func (s *DynamoStore) JoinRoom(ctx context.Context, roomID string) (*models.Room, error) {
	for attempt := 0; attempt < roomWriteAttempts; attempt++ {
		attrs, err := s.Dynamo.UpdateItemWithCondition(ctx, models.RoomsTable, roomKey(roomID),
			"SET participantCount = participantCount + :one",
			"attribute_exists(roomId) AND participantCount < maxParticipants",
			map[string]types.AttributeValue{
				":one": &types.AttributeValueMemberN{Value: "1"},
			},
			nil,
		)
		if err == nil {
			var room models.Room
			if err := attributevalue.UnmarshalMap(attrs, &room); err != nil {
				return nil, fmt.Errorf("failed to unmarshal room: %w", err)
			}
			return &room, nil
		}
		if !isConditionalFailure(err) {
			return nil, err
		}

		// The condition failed because the room is gone or full; re-read to
		// tell the two apart. Anything else was a transient race.
		item, getErr := s.Dynamo.GetItem(ctx, models.RoomsTable, roomKey(roomID))
		if getErr != nil {
			return nil, getErr
		}
		if item == nil {
			return nil, ErrNotFound
		}
		if utils.ExtractInt(item, "participantCount") >= utils.ExtractInt(item, "maxParticipants") {
			return nil, ErrRoomFull
		}
	}
	return nil, ErrConflict
}

func (s *DynamoStore) LeaveRoom(ctx context.Context, roomID string) (bool, error) {
	for attempt := 0; attempt < roomWriteAttempts; attempt++ {
		room, err := s.GetRoom(ctx, roomID)
		if errors.Is(err, ErrNotFound) {
			return false, nil // already cleaned up
		}
		if err != nil {
			return false, err
		}

		count := strconv.Itoa(room.ParticipantCount)
		if room.ParticipantCount <= 1 {
			err = s.Dynamo.DeleteItemWithCondition(ctx, models.RoomsTable, roomKey(roomID),
				"participantCount = :count",
				map[string]types.AttributeValue{
					":count": &types.AttributeValueMemberN{Value: count},
				},
				nil,
			)
			if err == nil {
				return true, nil
			}
		} else {
			_, err = s.Dynamo.UpdateItemWithCondition(ctx, models.RoomsTable, roomKey(roomID),
				"SET participantCount = participantCount - :one",
				"participantCount = :count",
				map[string]types.AttributeValue{
					":one":   &types.AttributeValueMemberN{Value: "1"},
					":count": &types.AttributeValueMemberN{Value: count},
				},
				nil,
			)
			if err == nil {
				return false, nil
			}
		}
		if !isConditionalFailure(err) {
			return false, err
		}
		// Count changed under us; re-read and try again.
	}
	return false, ErrConflict
}

// --- User profiles ---

func (s *DynamoStore) SaveProfile(ctx context.Context, userID, nickname string) (*models.UserProfile, error) {
	attrs, err := s.Dynamo.UpdateItemWithCondition(ctx, models.UserProfilesTable, userKey(userID),
		"SET nickname = :nickname, createdAt = if_not_exists(createdAt, :now), miracleMatchPoints = if_not_exists(miracleMatchPoints, :zero)",
		"",
		map[string]types.AttributeValue{
			":nickname": &types.AttributeValueMemberS{Value: nickname},
			":now":      &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Unix(), 10)},
			":zero":     &types.AttributeValueMemberN{Value: "0"},
		},
		nil,
	)
	if err != nil {
		return nil, err
	}
	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(attrs, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

func (s *DynamoStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	item, err := s.Dynamo.GetItem(ctx, models.UserProfilesTable, userKey(userID))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}
