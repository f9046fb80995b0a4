package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

var (
	ErrInvalidAddress   = errors.New("invalid wallet address")
	ErrInvalidSignature = errors.New("invalid signature")
)

// NormalizeAddress validates a hex wallet address and returns its EIP-55 checksum form.
func NormalizeAddress(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return "", ErrInvalidAddress
	}
	return common.HexToAddress(raw).Hex(), nil
}

// PersonalMessageHash is the EIP-191 digest wallets sign for personal_sign.
func PersonalMessageHash(msg string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte("\x19Ethereum Signed Message:\n" + strconv.Itoa(len(msg)) + msg))
	return h.Sum(nil)
}

// RecoverSigner returns the checksum address that produced sigHex over msg.
func RecoverSigner(msg, sigHex string) (string, error) {
	sig, err := hexutil.Decode(strings.TrimSpace(sigHex))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(sig) != 65 {
		return "", fmt.Errorf("%w: signature must be 65 bytes", ErrInvalidSignature)
	}
	// wallets emit v as 27/28; recovery expects 0/1
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := ethcrypto.SigToPub(PersonalMessageHash(msg), sig)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return ethcrypto.PubkeyToAddress(*pub).Hex(), nil
}

// VerifySignature reports whether address signed msg.
func VerifySignature(address, msg, sigHex string) bool {
	signer, err := RecoverSigner(msg, sigHex)
	if err != nil {
		return false
	}
	return strings.EqualFold(signer, address)
}
