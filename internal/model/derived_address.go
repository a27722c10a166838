package model

import "github.com/ethereum/go-ethereum/common/hexutil"

// DerivedAddress is the printable result of a program address lookup.
type DerivedAddress struct {
	Program string          `json:"program"`
	Address string          `json:"address"`
	Bump    uint8           `json:"bump"`
	Seeds   []hexutil.Bytes `json:"seeds"`
}
