package utils

import (
	"bytes"
	"encoding/base64"
	"strings"

	"github.com/dchest/captcha"
	"github.com/google/uuid"
)

const captchaLen = 4

// GenerateCaptcha 生成4位数字验证码与扭曲图片（PNG data URI）。
// 防脚本乱试用的装饰性验证码，不按安全级CAPTCHA要求设计。
func GenerateCaptcha() (id, code, image string, err error) {
	id = uuid.NewString()
	digits := captcha.RandomDigits(captchaLen)

	var sb strings.Builder
	for _, d := range digits {
		sb.WriteByte('0' + d)
	}
	code = sb.String()

	img := captcha.NewImage(id, digits, captcha.StdWidth, captcha.StdHeight)
	var buf bytes.Buffer
	if _, err = img.WriteTo(&buf); err != nil {
		return "", "", "", err
	}
	image = "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	return id, code, image, nil
}
