package receipt

import "errors"

// Upload is a receipt image on its way to the scan pipeline.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

func (u Upload) Validate() error {
	if u.Name == "" {
		return errors.New("upload has no file name")
	}

	if len(u.Data) == 0 {
		return errors.New("upload is empty")
	}

	return nil
}
