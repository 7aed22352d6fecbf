package provider

// ratingPayload is the rating-store write body. A nil Value clears the
// selection for that day.
type ratingPayload struct {
	Parameter string `json:"parameter"`
	Value     *int   `json:"value"`
	Date      string `json:"date"`
}

// UpdateValue writes (or, with a nil value, clears) a parameter rating in
// the store. Success is indicated by status only; the response body carries
// no contract.
func (c *Client) UpdateValue(param string, value *int, date string) error {
	return c.PostJSON(c.base+"/update_value/", ratingPayload{
		Parameter: param,
		Value:     value,
		Date:      date,
	}, nil)
}
