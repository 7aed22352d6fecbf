package provider

// RetrainResult is the retrain trigger's response.
type RetrainResult struct {
	Status  string   `json:"status"` // "ok" or "error"
	Details []string `json:"details,omitempty"`
}

// RetrainModels asks the backend to retrain all prediction models.
// Fire-and-forget admin action; slow by nature.
func (c *Client) RetrainModels() (RetrainResult, error) {
	var res RetrainResult
	if err := c.PostJSON(c.base+"/retrain_models_all/", struct{}{}, &res); err != nil {
		return RetrainResult{}, err
	}
	return res, nil
}
