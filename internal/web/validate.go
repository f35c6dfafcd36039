package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"task_portal/internal/core"
)

const maxBodyBytes = 1 << 20

// payloadValidator checks request payloads against their validate tags
// and reports failures in English, using the json field names.
type payloadValidator struct {
	v     *validator.Validate
	trans ut.Translator
}

func newValidator() *payloadValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		panic(fmt.Sprintf("register validator translations: %v", err))
	}
	return &payloadValidator{v: v, trans: trans}
}

func (p *payloadValidator) Struct(in any) error {
	err := p.v.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", core.ErrInvalidArgs, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, msg := range verrs.Translate(p.trans) {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", core.ErrInvalidArgs, strings.Join(msgs, "; "))
}

// decode reads a JSON body into in and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, in any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(in); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", core.ErrInvalidArgs)
		}
		return fmt.Errorf("%w: invalid json", core.ErrInvalidArgs)
	}
	return s.validate.Struct(in)
}
