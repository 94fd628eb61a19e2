package utils

import (
	"math/big"
	"testing"
)

func TestParseEtherDecimal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string // wei 的十进制表示
		wantErr bool
	}{
		{name: "整数金额", input: "1", want: "1000000000000000000"},
		{name: "典型价格", input: "0.005", want: "5000000000000000"},
		{name: "小数点开头", input: ".5", want: "500000000000000000"},
		{name: "零", input: "0", want: "0"},
		{name: "带空白", input: "  0.01  ", want: "10000000000000000"},
		{name: "18 位小数", input: "0.000000000000000001", want: "1"},
		{name: "整数加小数", input: "2.5", want: "2500000000000000000"},
		{name: "尾部零", input: "0.0050", want: "5000000000000000"},
		{name: "大金额", input: "1000000", want: "1000000000000000000000000"},
		{name: "空字符串", input: "", wantErr: true},
		{name: "负数", input: "-1", wantErr: true},
		{name: "19 位小数", input: "0.0000000000000000001", wantErr: true},
		{name: "非数字", input: "abc", wantErr: true},
		{name: "科学计数法", input: "1e18", wantErr: true},
		{name: "只有小数点", input: ".", wantErr: true},
		{name: "两个小数点", input: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEtherDecimal(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseEtherDecimal(%q) expected error, got %s", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEtherDecimal(%q) error = %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseEtherDecimal(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatWeiDecimal(t *testing.T) {
	tests := []struct {
		name string
		wei  string
		want string
	}{
		{name: "零", wei: "0", want: "0"},
		{name: "1 wei", wei: "1", want: "0.000000000000000001"},
		{name: "典型价格", wei: "5000000000000000", want: "0.005"},
		{name: "整数 ETH", wei: "1000000000000000000", want: "1"},
		{name: "整数加小数", wei: "2500000000000000000", want: "2.5"},
		{name: "负数", wei: "-5000000000000000", want: "-0.005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wei, ok := new(big.Int).SetString(tt.wei, 10)
			if !ok {
				t.Fatalf("invalid test input %q", tt.wei)
			}
			if got := FormatWeiDecimal(wei); got != tt.want {
				t.Errorf("FormatWeiDecimal(%s) = %q, want %q", tt.wei, got, tt.want)
			}
		})
	}

	t.Run("nil 按零处理", func(t *testing.T) {
		if got := FormatWeiDecimal(nil); got != "0" {
			t.Errorf("FormatWeiDecimal(nil) = %q, want %q", got, "0")
		}
	})
}

// TestAmountRoundTrip 解析与格式化必须无损往返
func TestAmountRoundTrip(t *testing.T) {
	inputs := []string{"0.005", "1", "0.000000000000000001", "123.456789", "0"}

	for _, input := range inputs {
		wei, err := ParseEtherDecimal(input)
		if err != nil {
			t.Fatalf("ParseEtherDecimal(%q) error = %v", input, err)
		}
		got := FormatWeiDecimal(wei)
		if got != input {
			t.Errorf("round trip %q -> %s -> %q", input, wei, got)
		}
	}
}
