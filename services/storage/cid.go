package storage

import (
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// CIDv0 是 base58 编码的 sha2-256 multihash：0x12（sha2-256）+
// 0x20（32 字节摘要）+ 摘要，编码后固定 46 个字符、Qm 开头。
const (
	cidV0Length       = 46
	multihashSHA256   = 0x12
	multihashLen32    = 0x20
	decodedCIDV0Bytes = 34
)

// ValidateContentID 校验内容标识是否为合法的 CIDv0
//
// 网关返回的标识在进入账本登记之前必须校验；一个被污染的
// 标识写上账本就无法更正了。
func ValidateContentID(contentID string) error {
	if len(contentID) != cidV0Length {
		return fmt.Errorf("content id must be %d characters, got %d", cidV0Length, len(contentID))
	}
	if contentID[0] != 'Q' || contentID[1] != 'm' {
		return fmt.Errorf("content id must start with Qm")
	}

	decoded := base58.Decode(contentID)
	if len(decoded) != decodedCIDV0Bytes {
		return fmt.Errorf("content id is not valid base58 multihash")
	}
	if decoded[0] != multihashSHA256 || decoded[1] != multihashLen32 {
		return fmt.Errorf("content id has unexpected multihash prefix")
	}

	return nil
}
