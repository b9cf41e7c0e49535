package types

// Friend is an entry of the account's friend list.
type Friend struct {
	UIN    UIN    `json:"uin"`
	Nick   string `json:"nick"`
	Remark string `json:"remark,omitempty"`
}

// Group is a group the account has joined.
type Group struct {
	Code        GroupCode `json:"code"`
	Name        string    `json:"name"`
	MemberCount int       `json:"member_count"`
}
