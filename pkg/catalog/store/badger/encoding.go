package badger

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/marmos91/mdcatalog/pkg/catalog/models"
)

// ============================================================================
// Database Key Namespace Design
// ============================================================================
//
// Data Type        Prefix   Key Format         Value Type
// ==========================================================================
// Draft Record     "d:"     d:<id>             MetadataDraft (JSON)
// UUID Index       "u:"     u:<uuid>           id (decimal)
//
// Ids are zero padded so a prefix scan returns drafts in ascending id order.

const (
	prefixDraft = "d:"
	prefixUUID  = "u:"
)

// keyDraft generates a key for a draft record: "d:<id>"
func keyDraft(id int) []byte {
	return []byte(fmt.Sprintf("%s%019d", prefixDraft, id))
}

// keyUUID generates a key for the uuid index: "u:<uuid>"
func keyUUID(uuid string) []byte {
	return []byte(prefixUUID + uuid)
}

// idFromDraftKey parses the id out of a "d:<id>" key.
func idFromDraftKey(key []byte) (int, error) {
	return strconv.Atoi(strings.TrimLeft(strings.TrimPrefix(string(key), prefixDraft), "0"))
}

func encodeDraft(d *models.MetadataDraft) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode draft %d: %w", d.ID, err)
	}
	return data, nil
}

func decodeDraft(data []byte) (*models.MetadataDraft, error) {
	var d models.MetadataDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &d, nil
}

func encodeID(id int) []byte {
	return []byte(strconv.Itoa(id))
}

func decodeID(data []byte) (int, error) {
	return strconv.Atoi(string(data))
}
