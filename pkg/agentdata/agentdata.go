// Package agentdata persists the identity the batchmint CLI acts as.
package agentdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/multiformats/go-varint"
	"github.com/storacha/go-ucanto/principal"
	ed25519signer "github.com/storacha/go-ucanto/principal/ed25519/signer"
	rsasigner "github.com/storacha/go-ucanto/principal/rsa/signer"
)

type AgentData struct {
	Principal principal.Signer
	// Database is the path of the collection database last used, if any.
	Database string
}

type agentDataSerialized struct {
	Principal []byte
	Database  string `json:",omitempty"`
}

func (ad AgentData) MarshalJSON() ([]byte, error) {
	if ad.Principal == nil {
		return nil, errors.New("agent data has no principal")
	}
	return json.Marshal(agentDataSerialized{
		Principal: ad.Principal.Encode(),
		Database:  ad.Database,
	})
}

func (ad *AgentData) UnmarshalJSON(b []byte) error {
	var s agentDataSerialized
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	code, err := varint.ReadUvarint(bytes.NewReader(s.Principal))
	if err != nil {
		return fmt.Errorf("reading private key codec: %w", err)
	}

	switch code {
	case ed25519signer.Code:
		ad.Principal, err = ed25519signer.Decode(s.Principal)
		if err != nil {
			return err
		}

	case rsasigner.Code:
		ad.Principal, err = rsasigner.Decode(s.Principal)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("invalid private key codec: %d", code)
	}

	ad.Database = s.Database
	return nil
}

func (ad AgentData) WriteToFile(path string) error {
	b, err := json.Marshal(ad)
	if err != nil {
		return err
	}

	return os.WriteFile(path, b, 0600)
}

func ReadFromFile(path string) (AgentData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return AgentData{}, err
	}

	var ad AgentData
	if err := json.Unmarshal(b, &ad); err != nil {
		return AgentData{}, fmt.Errorf("decoding agent data %s: %w", path, err)
	}
	return ad, nil
}
