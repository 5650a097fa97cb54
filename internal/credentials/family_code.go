package credentials

import (
	"crypto/rand"
	"math/big"
)

// FamilyCodeLength is the length of generated family codes
const FamilyCodeLength = 6

// familyCodeChars excludes nothing: the code is a shareable household
// identifier, not a secret, and uppercase alphanumerics keep it easy to
// read out loud.
const familyCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateFamilyCode generates a random 6-character uppercase alphanumeric
// family code. No uniqueness check is performed here; collisions surface as
// unique-constraint violations when the family row is inserted.
func GenerateFamilyCode() (string, error) {
	code := make([]byte, FamilyCodeLength)

	for i := 0; i < FamilyCodeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(familyCodeChars))))
		if err != nil {
			return "", err
		}
		code[i] = familyCodeChars[num.Int64()]
	}

	return string(code), nil
}
