package utils

import (
	"fmt"
	"math/big"
	"strings"
)

// EtherDecimals ETH 的小数位数（1 ETH = 10^18 wei）
const EtherDecimals = 18

// weiPerEther 10^18
var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(EtherDecimals), nil)

// ParseEtherDecimal 将十进制 ETH 字符串精确转换为 wei
//
// 全程使用十进制大整数运算，绝不经过二进制浮点数，
// 提交价格时不会出现舍入偏差。
//
// 示例：
//
//	wei, err := ParseEtherDecimal("0.005")
//	// wei = 5000000000000000
func ParseEtherDecimal(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("amount must not be negative: %s", s)
	}

	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart = s[:idx]
		fracPart = s[idx+1:]
	}

	if intPart == "" && fracPart == "" {
		return nil, fmt.Errorf("invalid amount: %s", s)
	}
	if intPart == "" {
		intPart = "0"
	}

	// 小数位超过 18 位无法用 wei 精确表示
	if len(fracPart) > EtherDecimals {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", s, EtherDecimals)
	}

	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return nil, fmt.Errorf("invalid amount: %s", s)
	}

	// 整数部分 * 10^18
	wei, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", s)
	}
	wei.Mul(wei, weiPerEther)

	// 小数部分右侧补零到 18 位后累加
	if fracPart != "" {
		padded := fracPart + strings.Repeat("0", EtherDecimals-len(fracPart))
		frac, ok := new(big.Int).SetString(padded, 10)
		if !ok {
			return nil, fmt.Errorf("invalid amount: %s", s)
		}
		wei.Add(wei, frac)
	}

	return wei, nil
}

// FormatWeiDecimal 将 wei 精确格式化为十进制 ETH 字符串
//
// 与 ParseEtherDecimal 构成无损往返：去掉小数尾部的零，
// 整数金额不带小数点。
func FormatWeiDecimal(wei *big.Int) string {
	if wei == nil || wei.Sign() == 0 {
		return "0"
	}

	neg := wei.Sign() < 0
	abs := new(big.Int).Abs(wei)

	quo := new(big.Int)
	rem := new(big.Int)
	quo.QuoRem(abs, weiPerEther, rem)

	result := quo.String()
	if rem.Sign() != 0 {
		frac := fmt.Sprintf("%018s", rem.String())
		frac = strings.TrimRight(frac, "0")
		result += "." + frac
	}

	if neg {
		result = "-" + result
	}
	return result
}

// isDigits 检查字符串是否只包含 ASCII 数字
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
